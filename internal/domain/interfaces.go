package domain

import (
	"context"
	"time"
)

// CoinSource defines the read operations the viewer needs from a coin data API.
type CoinSource interface {
	ListCoins(ctx context.Context) ([]CoinSummary, error)
	GetCoin(ctx context.Context, coinID string) (*CoinDetail, error)
	GetTicker(ctx context.Context, coinID string) (*PriceSnapshot, error)
	GetOHLCV(ctx context.Context, coinID string, start, end time.Time) ([]Candle, error)
}

// FetchRepository defines storage operations for the upstream fetch audit log.
type FetchRepository interface {
	SaveFetch(ctx context.Context, rec *FetchRecord) error
	ListFetches(ctx context.Context, limit int) ([]*FetchRecord, error)
	CountFetches(ctx context.Context, kind, coinID string) (int, error)
	CountByKind(ctx context.Context) (map[string]int, error)
	PruneFetches(ctx context.Context, before time.Time) (int64, error)
}
