package paprika

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/coin_tracker/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, IconBaseURL: "https://icons.test/api/icon/"})
}

func TestClient_ListCoins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins", r.URL.Path)
		w.Write([]byte(`[
			{"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,"is_new":false,"is_active":true,"type":"coin"},
			{"id":"eth-ethereum","name":"Ethereum","symbol":"ETH","rank":2,"is_new":false,"is_active":true,"type":"coin"}
		]`))
	})

	coins, err := client.ListCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, domain.CoinSummary{ID: "btc-bitcoin", Name: "Bitcoin", Symbol: "BTC", Rank: 1, IsActive: true, Type: "coin"}, coins[0])
}

func TestClient_ListCoinsSkipsInvalidEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rows := make([]string, 0, 152)
		for i := 0; i < 150; i++ {
			rows = append(rows, fmt.Sprintf(`{"id":"coin-%d","name":"Coin %d","symbol":"C%d","rank":%d}`, i, i, i, i+1))
		}
		rows = append(rows, `{"id":"x-nameless","name":""}`, `{"id":"","name":"Idless"}`)
		w.Write([]byte("[" + strings.Join(rows, ",") + "]"))
	})

	coins, err := client.ListCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 150)
	assert.Equal(t, "coin-0", coins[0].ID)
	assert.Equal(t, "coin-149", coins[149].ID)
	for _, c := range coins {
		assert.NotEqual(t, "x-nameless", c.ID)
	}
}

func TestClient_GetCoin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/btc-bitcoin", r.URL.Path)
		w.Write([]byte(`{
			"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,"open_source":true,
			"description":"Peer to peer cash","started_at":"2009-01-03T00:00:00Z",
			"links":{"website":["https://bitcoin.org/"],"source_code":["https://github.com/bitcoin/bitcoin"]},
			"tags":[{"id":"cryptocurrency","name":"Cryptocurrency","coin_counter":1,"ico_counter":0}],
			"whitepaper":{"link":"https://bitcoin.org/bitcoin.pdf","thumbnail":""},
			"last_data_at":null
		}`))
	})

	coin, err := client.GetCoin(context.Background(), "btc-bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "Bitcoin", coin.Name)
	assert.True(t, coin.OpenSource)
	assert.Equal(t, []string{"https://bitcoin.org/"}, coin.Links.Website)
	require.NotNil(t, coin.StartedAt)
	assert.Equal(t, 2009, coin.StartedAt.Year())
	assert.Nil(t, coin.LastDataAt)
	require.Len(t, coin.Tags, 1)
}

func TestClient_GetCoinNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"id not found"}`))
	})

	_, err := client.GetCoin(context.Background(), "nope-nope")
	require.ErrorIs(t, err, domain.ErrCoinNotFound)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "id not found", apiErr.Message)
}

func TestClient_GetCoinMismatchedID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"eth-ethereum","name":"Ethereum"}`))
	})

	_, err := client.GetCoin(context.Background(), "btc-bitcoin")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestClient_GetTicker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickers/btc-bitcoin", r.URL.Path)
		w.Write([]byte(`{
			"id":"btc-bitcoin","name":"Bitcoin","symbol":"BTC","rank":1,
			"circulating_supply":19500000,"total_supply":19500000,"max_supply":21000000,
			"quotes":{"USD":{"price":42000.5,"volume_24h":1.5e10,"percent_change_24h":-1.25,
			"ath_price":68692,"ath_date":"2021-11-10T16:51:15Z"}}
		}`))
	})

	ticker, err := client.GetTicker(context.Background(), "btc-bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 21000000.0, ticker.MaxSupply)
	assert.Equal(t, 42000.5, ticker.USD().Price)
	assert.Equal(t, -1.25, ticker.USD().PercentChange24h)
	require.NotNil(t, ticker.USD().AthDate)
}

func TestClient_GetTickerUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	})

	_, err := client.GetTicker(context.Background(), "btc-bitcoin")
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrCoinNotFound)
}

func TestClient_GetTickerMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.GetTicker(context.Background(), "btc-bitcoin")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestClient_GetOHLCV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/btc-bitcoin/ohlcv/historical", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2024-01-03", r.URL.Query().Get("end"))
		w.Write([]byte(`[
			{"time_open":"2024-01-02T00:00:00Z","close":43000},
			{"time_open":"2024-01-01T00:00:00Z","close":42000},
			{"time_open":"2024-01-03T00:00:00Z","close":44000}
		]`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles, err := client.GetOHLCV(context.Background(), "btc-bitcoin", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, 42000.0, candles[0].Close)
	assert.Equal(t, 44000.0, candles[2].Close)
}

func TestClient_IconURL(t *testing.T) {
	client := NewClient(ClientConfig{IconBaseURL: "https://icons.test/api/icon/"})
	assert.Equal(t, "https://icons.test/api/icon/btc", client.IconURL("BTC"))

	defaults := NewClient(ClientConfig{})
	assert.Equal(t, IconBaseURL+"/eth", defaults.IconURL("ETH"))
}
