package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "darkflow/pkg/http"
)

func TestFlowStateDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dashboard/flow_state", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"symbol":"BTC","intensity":0.82,"buy_pressure":0.6,"sell_pressure":0.4,"regime":"accumulation"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 2*time.Second, nil)
	states, err := c.FlowState(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, "BTC", states[0].Symbol)
	assert.InDelta(t, 0.82, states[0].Intensity, 1e-9)
}

func TestFlowsPassesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flows", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "BTC", r.URL.Query().Get("asset"))
		assert.Equal(t, "1000000", r.URL.Query().Get("min_usd"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 2*time.Second, nil)
	transfers, err := c.Flows(context.Background(), 25, "BTC", 1_000_000)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestNon2xxSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 2*time.Second, nil)
	_, err := c.MarketPrices(context.Background())
	require.Error(t, err)

	var appErr *xhttp.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ERR_UPSTREAM", appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestMalformedJSONSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 2*time.Second, nil)
	_, err := c.UIConfig(context.Background())
	assert.Error(t, err)
}
