package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/query"
)

// MockCoinSource counts calls per method and coin id. A coin listed in
// gates blocks until its channel is closed.
type MockCoinSource struct {
	mu      sync.Mutex
	calls   map[string]int
	Coins   []domain.CoinSummary
	Missing map[string]bool
	gates   map[string]chan struct{}
}

func NewMockCoinSource() *MockCoinSource {
	return &MockCoinSource{
		calls:   make(map[string]int),
		Missing: make(map[string]bool),
		gates:   make(map[string]chan struct{}),
	}
}

func (m *MockCoinSource) Gate(coinID string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[coinID] = ch
	return ch
}

// GateCall blocks only the given method for coinID.
func (m *MockCoinSource) GateCall(method, coinID string) chan struct{} {
	return m.Gate(method + ":" + coinID)
}

func (m *MockCoinSource) Calls(method, coinID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method+":"+coinID]
}

func (m *MockCoinSource) enter(ctx context.Context, method, coinID string) error {
	m.mu.Lock()
	m.calls[method+":"+coinID]++
	gate := m.gates[coinID]
	if gate == nil {
		gate = m.gates[method+":"+coinID]
	}
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.Missing[coinID] {
		return &domain.APIError{StatusCode: 404, Message: "id not found"}
	}
	return nil
}

func (m *MockCoinSource) ListCoins(ctx context.Context) ([]domain.CoinSummary, error) {
	if err := m.enter(ctx, "list", ""); err != nil {
		return nil, err
	}
	return m.Coins, nil
}

func (m *MockCoinSource) GetCoin(ctx context.Context, coinID string) (*domain.CoinDetail, error) {
	if err := m.enter(ctx, "coin", coinID); err != nil {
		return nil, err
	}
	return &domain.CoinDetail{ID: coinID, Name: "Name of " + coinID, Symbol: "SYM", Rank: 1}, nil
}

func (m *MockCoinSource) GetTicker(ctx context.Context, coinID string) (*domain.PriceSnapshot, error) {
	if err := m.enter(ctx, "ticker", coinID); err != nil {
		return nil, err
	}
	return &domain.PriceSnapshot{
		ID:     coinID,
		Name:   "Name of " + coinID,
		Quotes: map[string]domain.Quote{domain.QuoteCurrency: {Price: 42}},
	}, nil
}

func (m *MockCoinSource) GetOHLCV(ctx context.Context, coinID string, start, end time.Time) ([]domain.Candle, error) {
	if err := m.enter(ctx, "ohlcv", coinID); err != nil {
		return nil, err
	}
	return []domain.Candle{
		{TimeOpen: start, Close: 1},
		{TimeOpen: end, Close: 2},
	}, nil
}

func newTestService(src domain.CoinSource, cfg ServiceConfig) *CoinService {
	return NewCoinService(src, query.NewCache(query.Config{}, nil), cfg, nil)
}

func makeCoins(n int) []domain.CoinSummary {
	coins := make([]domain.CoinSummary, n)
	for i := range coins {
		coins[i] = domain.CoinSummary{ID: fmt.Sprintf("coin-%d", i), Name: fmt.Sprintf("Coin %d", i), Symbol: "C"}
	}
	return coins
}

func TestCoinService_CoinsCappedAtHundred(t *testing.T) {
	src := NewMockCoinSource()
	src.Coins = makeCoins(250)

	// A configured limit above the cap is clamped.
	svc := newTestService(src, ServiceConfig{ListLimit: 500})
	st := svc.Coins(context.Background())
	require.True(t, st.Loaded())
	assert.Len(t, st.Data, MaxListEntries)
	assert.Equal(t, "coin-0", st.Data[0].ID)
	assert.Equal(t, "coin-99", st.Data[99].ID)
}

func TestCoinService_CoinsShortList(t *testing.T) {
	src := NewMockCoinSource()
	src.Coins = makeCoins(3)

	svc := newTestService(src, ServiceConfig{})
	st := svc.Coins(context.Background())
	require.True(t, st.Loaded())
	assert.Len(t, st.Data, 3)
}

func TestCoinService_DetailFetchesOncePerCoin(t *testing.T) {
	src := NewMockCoinSource()
	svc := newTestService(src, ServiceConfig{})
	ctx := context.Background()

	// Detail view, then tab switches, then the detail view again.
	d := svc.Detail(ctx, "btc-bitcoin")
	require.True(t, d.Ready())
	svc.Price(ctx, "btc-bitcoin")
	svc.Chart(ctx, "btc-bitcoin")
	svc.Detail(ctx, "btc-bitcoin")
	svc.Chart(ctx, "btc-bitcoin")

	assert.Equal(t, 1, src.Calls("coin", "btc-bitcoin"))
	assert.Equal(t, 1, src.Calls("ticker", "btc-bitcoin"))
	assert.Equal(t, 1, src.Calls("ohlcv", "btc-bitcoin"))

	// A distinct coin costs its own pair of requests.
	svc.Detail(ctx, "eth-ethereum")
	assert.Equal(t, 1, src.Calls("coin", "eth-ethereum"))
	assert.Equal(t, 1, src.Calls("ticker", "eth-ethereum"))
}

func TestCoinService_DetailLoadingUntilBothSettle(t *testing.T) {
	src := NewMockCoinSource()
	gate := src.Gate("btc-bitcoin")
	svc := newTestService(src, ServiceConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	d := svc.Detail(ctx, "btc-bitcoin")
	assert.True(t, d.Loading())
	assert.False(t, d.Ready())
	assert.Equal(t, LoadingTitle, d.Title(nil))
	assert.Equal(t, "Bitcoin", d.Title(&domain.NavigationHint{Name: "Bitcoin"}))

	close(gate)
	d = svc.Detail(context.Background(), "btc-bitcoin")
	require.True(t, d.Ready())
	assert.Equal(t, "Name of btc-bitcoin", d.Title(&domain.NavigationHint{Name: "Bitcoin"}))

	// The wait timing out did not start a second request.
	assert.Equal(t, 1, src.Calls("coin", "btc-bitcoin"))
}

func TestCoinService_DetailNotFound(t *testing.T) {
	src := NewMockCoinSource()
	src.Missing["nope"] = true
	svc := newTestService(src, ServiceConfig{})

	d := svc.Detail(context.Background(), "nope")
	assert.False(t, d.Loading())
	assert.ErrorIs(t, d.Err(), domain.ErrCoinNotFound)
}

func TestCoinService_DetailFailureStopsWaitingOnPrice(t *testing.T) {
	src := NewMockCoinSource()
	src.Missing["nope"] = true
	gate := src.GateCall("ticker", "nope")
	defer close(gate)
	svc := newTestService(src, ServiceConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	d := svc.Detail(ctx, "nope")
	assert.Less(t, time.Since(start), time.Second)

	assert.ErrorIs(t, d.Err(), domain.ErrCoinNotFound)
	assert.True(t, d.Info.Failed())
	assert.True(t, d.Price.Pending())
	assert.False(t, d.Ready())
}

func TestCoinService_ChartWindow(t *testing.T) {
	svc := newTestService(NewMockCoinSource(), ServiceConfig{ChartDays: 7})
	svc.timeNow = func() time.Time {
		return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	}

	start, end := svc.ChartWindow()
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 7, svc.ChartDays())

	st := svc.Chart(context.Background(), "btc-bitcoin")
	require.True(t, st.Loaded())
	assert.Len(t, st.Data, 2)
}
