//go:build wireinject
// +build wireinject

package di

import (
	"darkflow/pkg/config"
	"darkflow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideCollector,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideUpstream,

		// Live event path
		ProvideFeed,
		ProvideHub,
		ProvideNotifier,
		ProvideProcessor,
		ProvidePipeline,
		ProvideLiveClient,

		// Views
		ProvideViews,
		ProvideRefresher,

		// HTTP
		ProvideHandlers,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
