package usecase

import (
	"context"
	"time"

	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/query"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxListEntries   = 100
	DefaultChartDays = 14
	LoadingTitle     = "Loading..."
)

type ServiceConfig struct {
	ListLimit int
	ChartDays int
}

// CoinService reads coins through the query cache so that every
// (kind, coinId) pair reaches the upstream at most once while fresh.
type CoinService struct {
	source    domain.CoinSource
	cache     *query.Cache
	listLimit int
	chartDays int
	logger    *zap.Logger
	timeNow   func() time.Time // For testing
}

func NewCoinService(source domain.CoinSource, cache *query.Cache, cfg ServiceConfig, logger *zap.Logger) *CoinService {
	if cfg.ListLimit <= 0 || cfg.ListLimit > MaxListEntries {
		cfg.ListLimit = MaxListEntries
	}
	if cfg.ChartDays <= 0 {
		cfg.ChartDays = DefaultChartDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinService{
		source:    source,
		cache:     cache,
		listLimit: cfg.ListLimit,
		chartDays: cfg.ChartDays,
		logger:    logger,
		timeNow:   time.Now,
	}
}

func listKey() query.Key                { return query.Key{Kind: query.KindCoins} }
func infoKey(coinID string) query.Key   { return query.Key{Kind: query.KindCoin, CoinID: coinID} }
func tickerKey(coinID string) query.Key { return query.Key{Kind: query.KindTicker, CoinID: coinID} }
func ohlcvKey(coinID string) query.Key  { return query.Key{Kind: query.KindOHLCV, CoinID: coinID} }

// Coins returns the coin list truncated to the configured limit. It waits
// for the list until ctx is done.
func (s *CoinService) Coins(ctx context.Context) query.State[[]domain.CoinSummary] {
	st := query.Load(ctx, s.cache, listKey(), s.source.ListCoins)
	if st.Loaded() && len(st.Data) > s.listLimit {
		st.Data = st.Data[:s.listLimit]
	}
	return st
}

// DetailState joins the info and price queries of one coin.
type DetailState struct {
	CoinID string
	Info   query.State[*domain.CoinDetail]
	Price  query.State[*domain.PriceSnapshot]
}

// Loading is true while either query is still in flight.
func (d DetailState) Loading() bool {
	return d.Info.Pending() || d.Price.Pending()
}

// Ready reports whether both queries succeeded.
func (d DetailState) Ready() bool {
	return d.Info.Loaded() && d.Price.Loaded()
}

// Err returns the first failure, info before price.
func (d DetailState) Err() error {
	if d.Info.Failed() {
		return d.Info.Err
	}
	if d.Price.Failed() {
		return d.Price.Err
	}
	return nil
}

// Title is the hint name (or LoadingTitle) until both queries succeed,
// then the fetched name.
func (d DetailState) Title(hint *domain.NavigationHint) string {
	if d.Ready() && d.Info.Data.Name != "" {
		return d.Info.Data.Name
	}
	if hint != nil && hint.Name != "" {
		return hint.Name
	}
	return LoadingTitle
}

func (s *CoinService) fetchInfo(coinID string) func(ctx context.Context) (*domain.CoinDetail, error) {
	return func(ctx context.Context) (*domain.CoinDetail, error) {
		return s.source.GetCoin(ctx, coinID)
	}
}

func (s *CoinService) fetchTicker(coinID string) func(ctx context.Context) (*domain.PriceSnapshot, error) {
	return func(ctx context.Context) (*domain.PriceSnapshot, error) {
		return s.source.GetTicker(ctx, coinID)
	}
}

// Detail starts info and price for coinID together and waits for both
// until ctx is done. The first failure stops the wait on the other query,
// which keeps running in the cache.
func (s *CoinService) Detail(ctx context.Context, coinID string) DetailState {
	d := DetailState{CoinID: coinID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Info = query.Load(gctx, s.cache, infoKey(coinID), s.fetchInfo(coinID))
		return d.Info.Err
	})
	g.Go(func() error {
		d.Price = query.Load(gctx, s.cache, tickerKey(coinID), s.fetchTicker(coinID))
		return d.Price.Err
	})
	if err := g.Wait(); err != nil {
		s.logger.Debug("Detail failed", zap.String("coin_id", coinID), zap.Error(err))
	}
	return d
}

// Price reads the ticker of coinID from the same key the detail view uses.
func (s *CoinService) Price(ctx context.Context, coinID string) query.State[*domain.PriceSnapshot] {
	return query.Load(ctx, s.cache, tickerKey(coinID), s.fetchTicker(coinID))
}

// ChartWindow returns the [start, end] day range of the chart tab.
func (s *CoinService) ChartWindow() (time.Time, time.Time) {
	end := s.timeNow().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -s.chartDays)
	return start, end
}

// Chart loads the daily candles of coinID for the chart window.
func (s *CoinService) Chart(ctx context.Context, coinID string) query.State[[]domain.Candle] {
	start, end := s.ChartWindow()
	return query.Load(ctx, s.cache, ohlcvKey(coinID), func(ctx context.Context) ([]domain.Candle, error) {
		return s.source.GetOHLCV(ctx, coinID, start, end)
	})
}

func (s *CoinService) ChartDays() int {
	return s.chartDays
}

// CachedQueries reports how many settled queries the cache holds.
func (s *CoinService) CachedQueries() int {
	return s.cache.Len()
}
