package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vitos/coin_tracker/internal/domain"
	"github.com/vitos/coin_tracker/internal/query"
	"go.uber.org/zap"
)

// AuditedSource records one FetchRecord per upstream call.
type AuditedSource struct {
	source  domain.CoinSource
	repo    domain.FetchRepository
	logger  *zap.Logger
	timeNow func() time.Time
}

func NewAuditedSource(source domain.CoinSource, repo domain.FetchRepository, logger *zap.Logger) *AuditedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditedSource{
		source:  source,
		repo:    repo,
		logger:  logger,
		timeNow: time.Now,
	}
}

func (a *AuditedSource) record(ctx context.Context, kind query.Kind, coinID string, started time.Time, err error) {
	rec := &domain.FetchRecord{
		Kind:       string(kind),
		CoinID:     coinID,
		OK:         err == nil,
		StatusCode: statusOf(err),
		Duration:   a.timeNow().Sub(started),
		CreatedAt:  a.timeNow(),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	// The fetch context may already be past its deadline.
	if saveErr := a.repo.SaveFetch(context.WithoutCancel(ctx), rec); saveErr != nil {
		a.logger.Error("Failed to save fetch record",
			zap.String("kind", rec.Kind),
			zap.String("coin_id", coinID),
			zap.Error(saveErr))
	}
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	if errors.Is(err, domain.ErrInvalidPayload) {
		return http.StatusOK
	}
	return 0
}

func (a *AuditedSource) ListCoins(ctx context.Context) ([]domain.CoinSummary, error) {
	started := a.timeNow()
	coins, err := a.source.ListCoins(ctx)
	a.record(ctx, query.KindCoins, "", started, err)
	return coins, err
}

func (a *AuditedSource) GetCoin(ctx context.Context, coinID string) (*domain.CoinDetail, error) {
	started := a.timeNow()
	coin, err := a.source.GetCoin(ctx, coinID)
	a.record(ctx, query.KindCoin, coinID, started, err)
	return coin, err
}

func (a *AuditedSource) GetTicker(ctx context.Context, coinID string) (*domain.PriceSnapshot, error) {
	started := a.timeNow()
	ticker, err := a.source.GetTicker(ctx, coinID)
	a.record(ctx, query.KindTicker, coinID, started, err)
	return ticker, err
}

func (a *AuditedSource) GetOHLCV(ctx context.Context, coinID string, start, end time.Time) ([]domain.Candle, error) {
	started := a.timeNow()
	candles, err := a.source.GetOHLCV(ctx, coinID, start, end)
	a.record(ctx, query.KindOHLCV, coinID, started, err)
	return candles, err
}
