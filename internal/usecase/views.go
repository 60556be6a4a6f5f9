package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
	"darkflow/pkg/cache"
	"darkflow/pkg/logger"
)

// ViewTTLs holds per-view cache lifetimes.
type ViewTTLs struct {
	FlowState    time.Duration
	MarketPrices time.Duration
	Fingerprint  time.Duration
	Alerts       time.Duration
	Wallets      time.Duration
}

// Views composes upstream analytics reads behind a cache. Upstream
// failures degrade each view to its empty value instead of failing
// the request.
type Views struct {
	upstream domrepo.Upstream
	cache    cache.Service
	ttl      ViewTTLs
	log      *logger.Logger
	metrics  domrepo.Metrics

	mu       sync.RWMutex
	snapshot models.DashboardSnapshot
}

// NewViews creates the view aggregator.
func NewViews(upstream domrepo.Upstream, c cache.Service, ttl ViewTTLs, log *logger.Logger, metrics domrepo.Metrics) *Views {
	return &Views{upstream: upstream, cache: c, ttl: ttl, log: log, metrics: metrics}
}

// FlowState returns the per-symbol dark-flow aggregates. The second
// return is false when the value is a degraded empty fallback.
func (v *Views) FlowState(ctx context.Context) ([]models.FlowState, bool) {
	out, err := cache.GetOrFill(ctx, v.cache, cache.GenerateKey("view", "flow_state"), v.ttl.FlowState,
		v.upstream.FlowState)
	if err != nil {
		v.degraded("flow_state", err)
		return []models.FlowState{}, false
	}
	return out, true
}

// MarketPrices returns the ticker strip rows.
func (v *Views) MarketPrices(ctx context.Context) ([]models.MarketPrice, bool) {
	out, err := cache.GetOrFill(ctx, v.cache, cache.GenerateKey("view", "market_prices"), v.ttl.MarketPrices,
		v.upstream.MarketPrices)
	if err != nil {
		v.degraded("market_prices", err)
		return []models.MarketPrice{}, false
	}
	return out, true
}

// Alerts returns backend-evaluated alerts.
func (v *Views) Alerts(ctx context.Context, limit int, severity string) ([]models.Alert, bool) {
	key := cache.GenerateKeyWithParams("view:alerts", limit, severity)
	out, err := cache.GetOrFill(ctx, v.cache, key, v.ttl.Alerts, func(ctx context.Context) ([]models.Alert, error) {
		return v.upstream.Alerts(ctx, limit, severity)
	})
	if err != nil {
		v.degraded("alerts", err)
		return []models.Alert{}, false
	}
	return out, true
}

// Flows returns recent whale transfers.
func (v *Views) Flows(ctx context.Context, limit int, asset string, minUSD float64) ([]models.WhaleTransfer, bool) {
	key := cache.GenerateKeyWithParams("view:flows", limit, asset, minUSD)
	out, err := cache.GetOrFill(ctx, v.cache, key, v.ttl.MarketPrices, func(ctx context.Context) ([]models.WhaleTransfer, error) {
		return v.upstream.Flows(ctx, limit, asset, minUSD)
	})
	if err != nil {
		v.degraded("flows", err)
		return []models.WhaleTransfer{}, false
	}
	return out, true
}

// Fingerprint returns the algo-trading classification for one symbol.
func (v *Views) Fingerprint(ctx context.Context, symbol string) (models.AlgoFingerprint, bool) {
	key := cache.GenerateKey("view:fingerprint", symbol)
	out, err := cache.GetOrFill(ctx, v.cache, key, v.ttl.Fingerprint, func(ctx context.Context) (models.AlgoFingerprint, error) {
		return v.upstream.AlgoFingerprint(ctx, symbol)
	})
	if err != nil {
		v.degraded("fingerprint", err)
		return models.AlgoFingerprint{Symbol: symbol, Pattern: "unknown"}, false
	}
	return out, true
}

// Wallet returns the intelligence profile for one address.
func (v *Views) Wallet(ctx context.Context, address string) (models.WalletProfile, bool) {
	key := cache.GenerateKey("view:wallet", address)
	out, err := cache.GetOrFill(ctx, v.cache, key, v.ttl.Wallets, func(ctx context.Context) (models.WalletProfile, error) {
		return v.upstream.WalletProfile(ctx, address)
	})
	if err != nil {
		v.degraded("wallet", err)
		return models.WalletProfile{Address: address}, false
	}
	return out, true
}

// UIConfig returns the dashboard bootstrap payload.
func (v *Views) UIConfig(ctx context.Context) (models.UIConfig, bool) {
	out, err := cache.GetOrFill(ctx, v.cache, cache.GenerateKey("view", "ui"), v.ttl.MarketPrices,
		v.upstream.UIConfig)
	if err != nil {
		v.degraded("ui", err)
		return models.UIConfig{}, false
	}
	return out, true
}

// Refresh rebuilds the composed dashboard snapshot with concurrent
// upstream fetches.
func (v *Views) Refresh(ctx context.Context) models.DashboardSnapshot {
	var (
		snap models.DashboardSnapshot
		mu   sync.Mutex
	)
	markPartial := func(ok bool) {
		if !ok {
			mu.Lock()
			snap.Partial = true
			mu.Unlock()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, ok := v.FlowState(gctx)
		mu.Lock()
		snap.FlowState = out
		mu.Unlock()
		markPartial(ok)
		return nil
	})
	g.Go(func() error {
		out, ok := v.MarketPrices(gctx)
		mu.Lock()
		snap.Prices = out
		mu.Unlock()
		markPartial(ok)
		return nil
	})
	g.Go(func() error {
		out, ok := v.Alerts(gctx, 20, "")
		mu.Lock()
		snap.Alerts = out
		mu.Unlock()
		markPartial(ok)
		return nil
	})
	g.Go(func() error {
		out, ok := v.Flows(gctx, 20, "", 0)
		mu.Lock()
		snap.Transfers = out
		mu.Unlock()
		markPartial(ok)
		return nil
	})
	_ = g.Wait()

	snap.Fingerprints = v.fingerprintsFor(ctx, snap.FlowState)
	snap.GeneratedAt = time.Now().UTC()

	v.mu.Lock()
	v.snapshot = snap
	v.mu.Unlock()
	return snap
}

func (v *Views) fingerprintsFor(ctx context.Context, states []models.FlowState) []models.AlgoFingerprint {
	out := make([]models.AlgoFingerprint, 0, len(states))
	for _, st := range states {
		fp, ok := v.Fingerprint(ctx, st.Symbol)
		if !ok {
			continue
		}
		out = append(out, fp)
	}
	return out
}

// Snapshot returns the last composed snapshot, refreshing it first if
// none was built yet.
func (v *Views) Snapshot(ctx context.Context) models.DashboardSnapshot {
	v.mu.RLock()
	snap := v.snapshot
	v.mu.RUnlock()
	if snap.GeneratedAt.IsZero() {
		return v.Refresh(ctx)
	}
	return snap
}

func (v *Views) degraded(view string, err error) {
	v.metrics.RecordError("view_" + view)
	v.log.Warn("view degraded", logger.String("view", view), logger.Error(err))
}
