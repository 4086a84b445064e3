package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LoadFetchesOncePerKey(t *testing.T) {
	c := NewCache(Config{}, nil)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "Bitcoin", nil
	}

	key := Key{Kind: KindCoin, CoinID: "btc-bitcoin"}
	for i := 0; i < 5; i++ {
		st := Load(context.Background(), c, key, fetch)
		require.True(t, st.Loaded())
		assert.Equal(t, "Bitcoin", st.Data)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_ConcurrentReadersShareInflightFetch(t *testing.T) {
	c := NewCache(Config{}, nil)
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	key := Key{Kind: KindTicker, CoinID: "btc-bitcoin"}
	var wg sync.WaitGroup
	results := make([]State[int], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Load(context.Background(), c, key, fetch)
		}(i)
	}

	// Every reader has either started or joined the single fetch.
	require.Eventually(t, func() bool {
		res, known := c.Peek(key)
		return known && res.Status == StatusPending
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, st := range results {
		assert.Equal(t, 42, st.Data)
	}
}

func TestCache_DistinctKeysFetchIndependently(t *testing.T) {
	c := NewCache(Config{}, nil)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "x", nil
	}

	Load(context.Background(), c, Key{Kind: KindCoin, CoinID: "btc-bitcoin"}, fetch)
	Load(context.Background(), c, Key{Kind: KindTicker, CoinID: "btc-bitcoin"}, fetch)
	Load(context.Background(), c, Key{Kind: KindCoin, CoinID: "eth-ethereum"}, fetch)

	assert.Equal(t, int32(3), calls.Load())
}

func TestCache_WaitReturnsPendingWhenContextEnds(t *testing.T) {
	c := NewCache(Config{}, nil)
	release := make(chan struct{})
	defer close(release)

	key := Key{Kind: KindOHLCV, CoinID: "btc-bitcoin"}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	st := Load(ctx, c, key, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	assert.True(t, st.Pending())

	res, known := c.Peek(key)
	assert.True(t, known)
	assert.Equal(t, StatusPending, res.Status)
}

func TestCache_FailureIsCachedForFailureTTL(t *testing.T) {
	c := NewCache(Config{FailureTTL: 50 * time.Millisecond}, nil)
	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "", boom
	}

	key := Key{Kind: KindCoins}
	st := Load(context.Background(), c, key, fetch)
	require.True(t, st.Failed())
	assert.ErrorIs(t, st.Err, boom)

	st = Load(context.Background(), c, key, fetch)
	assert.True(t, st.Failed())
	assert.Equal(t, int32(1), calls.Load())

	time.Sleep(80 * time.Millisecond)
	Load(context.Background(), c, key, fetch)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_FetchIsDetachedFromCallerContext(t *testing.T) {
	c := NewCache(Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key := Key{Kind: KindCoin, CoinID: "btc-bitcoin"}
	Start(c, key, func(fetchCtx context.Context) (string, error) {
		return "Bitcoin", fetchCtx.Err()
	})

	st := Typed[string](c.Wait(ctx, key))
	if st.Pending() {
		st = Typed[string](c.Wait(context.Background(), key))
	}
	require.True(t, st.Loaded())
	assert.Equal(t, "Bitcoin", st.Data)
}

func TestCache_Invalidate(t *testing.T) {
	c := NewCache(Config{}, nil)
	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	key := Key{Kind: KindTicker, CoinID: "btc-bitcoin"}
	assert.Equal(t, 1, Load(context.Background(), c, key, fetch).Data)
	c.Invalidate(key)
	assert.Equal(t, 2, Load(context.Background(), c, key, fetch).Data)
}

func TestTyped_WrongValueTypeIsFailure(t *testing.T) {
	st := Typed[int](Result{Status: StatusSuccess, Value: "not an int"})
	assert.True(t, st.Failed())
	assert.Error(t, st.Err)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "coin:btc-bitcoin", Key{Kind: KindCoin, CoinID: "btc-bitcoin"}.String())
	assert.Equal(t, "coins:", Key{Kind: KindCoins}.String())
	assert.Equal(t, "failure", StatusFailure.String())
}
