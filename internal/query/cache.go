package query

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

type Kind string

const (
	KindCoins  Kind = "coins"
	KindCoin   Kind = "coin"
	KindTicker Kind = "ticker"
	KindOHLCV  Kind = "ohlcv"
)

// Key identifies one remote resource; CoinID is empty for the coin list.
type Key struct {
	Kind   Kind
	CoinID string
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.CoinID
}

// Result is the state of a key at one point in time.
type Result struct {
	Status    Status
	Value     any
	Err       error
	SettledAt time.Time
}

// Fetcher loads the value of a key.
type Fetcher func(ctx context.Context) (any, error)

type call struct {
	done chan struct{}
}

const (
	DefaultTTL        = 5 * time.Minute
	DefaultFailureTTL = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
)

type Config struct {
	TTL        time.Duration
	FailureTTL time.Duration
	// FetchTimeout bounds a fetch that runs detached from its callers.
	FetchTimeout time.Duration
}

// Cache keeps at most one request in flight per key and holds settled
// results for TTL (successes) or FailureTTL (failures).
type Cache struct {
	store        *cache.Cache
	inflight     map[Key]*call
	ttl          time.Duration
	failureTTL   time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
	mu           sync.Mutex
	timeNow      func() time.Time
}

func NewCache(cfg Config, logger *zap.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.FailureTTL <= 0 {
		cfg.FailureTTL = DefaultFailureTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:        cache.New(cfg.TTL, cleanupInterval),
		inflight:     make(map[Key]*call),
		ttl:          cfg.TTL,
		failureTTL:   cfg.FailureTTL,
		fetchTimeout: cfg.FetchTimeout,
		logger:       logger,
		timeNow:      time.Now,
	}
}

// Peek returns the state of key without starting a fetch. A key that is
// neither settled nor in flight reports StatusPending with ok false.
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peekLocked(key)
}

func (c *Cache) peekLocked(key Key) (Result, bool) {
	if v, found := c.store.Get(key.String()); found {
		return v.(Result), true
	}
	if _, running := c.inflight[key]; running {
		return Result{Status: StatusPending}, true
	}
	return Result{Status: StatusPending}, false
}

// Ensure starts fetch for key unless the key is settled or already in flight,
// and returns the current state.
func (c *Cache) Ensure(key Key, fetch Fetcher) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res, known := c.peekLocked(key); known {
		return res
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	go c.run(key, cl, fetch)

	return Result{Status: StatusPending}
}

func (c *Cache) run(key Key, cl *call, fetch Fetcher) {
	ctx := context.Background()
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	start := c.timeNow()
	value, err := fetch(ctx)

	res := Result{Status: StatusSuccess, Value: value, SettledAt: c.timeNow()}
	ttl := c.ttl
	if err != nil {
		res = Result{Status: StatusFailure, Err: err, SettledAt: res.SettledAt}
		ttl = c.failureTTL
		c.logger.Warn("Query failed",
			zap.String("key", key.String()),
			zap.Duration("took", res.SettledAt.Sub(start)),
			zap.Error(err))
	} else {
		c.logger.Debug("Query settled",
			zap.String("key", key.String()),
			zap.Duration("took", res.SettledAt.Sub(start)))
	}

	c.mu.Lock()
	c.store.Set(key.String(), res, ttl)
	delete(c.inflight, key)
	c.mu.Unlock()

	close(cl.done)
}

// Wait blocks until key settles or ctx is done. It does not start a fetch.
func (c *Cache) Wait(ctx context.Context, key Key) Result {
	c.mu.Lock()
	if v, found := c.store.Get(key.String()); found {
		c.mu.Unlock()
		return v.(Result)
	}
	cl, running := c.inflight[key]
	c.mu.Unlock()

	if !running {
		return Result{Status: StatusPending}
	}

	select {
	case <-cl.done:
		res, _ := c.Peek(key)
		return res
	case <-ctx.Done():
		return Result{Status: StatusPending}
	}
}

// Invalidate drops the settled result for key; an in-flight fetch is left alone.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(key.String())
}

// Len reports the number of settled keys.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
