package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/coin_tracker/internal/domain"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
		ok   bool
	}{
		{"/btc-bitcoin", Route{CoinID: "btc-bitcoin"}, true},
		{"/btc-bitcoin/price", Route{CoinID: "btc-bitcoin", Tab: domain.TabPrice}, true},
		{"/btc-bitcoin/chart", Route{CoinID: "btc-bitcoin", Tab: domain.TabChart}, true},
		{"/", Route{}, false},
		{"/btc-bitcoin/volume", Route{}, false},
		{"/btc-bitcoin/chart/extra", Route{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParseRoute(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_RoundTrip(t *testing.T) {
	for _, path := range []string{"/btc-bitcoin", "/eth-ethereum/price", "/usdt-tether/chart"} {
		r, ok := ParseRoute(path)
		assert.True(t, ok)
		assert.Equal(t, path, r.Path())

		again, ok := ParseRoute(r.Path())
		assert.True(t, ok)
		assert.Equal(t, r, again)
	}
}

func TestRoute_WithTab(t *testing.T) {
	r := Route{CoinID: "btc-bitcoin", Tab: domain.TabPrice}
	assert.Equal(t, "/btc-bitcoin/chart", r.WithTab(domain.TabChart).Path())
	assert.Equal(t, "/btc-bitcoin", r.WithTab(domain.TabNone).Path())
}
