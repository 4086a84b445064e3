package usecase

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/vitos/coin_tracker/internal/domain"
	"go.uber.org/zap"
)

// RetentionService prunes the fetch audit log.
type RetentionService struct {
	repo      domain.FetchRepository
	retention time.Duration
	logger    *zap.Logger
	timeNow   func() time.Time
}

func NewRetentionService(repo domain.FetchRepository, retention time.Duration, logger *zap.Logger) *RetentionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionService{
		repo:      repo,
		retention: retention,
		logger:    logger,
		timeNow:   time.Now,
	}
}

// Prune removes records older than the retention window.
func (s *RetentionService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.timeNow().Add(-s.retention)
	removed, err := s.repo.PruneFetches(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune fetch records", zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Pruned fetch records", zap.Int64("removed", removed), zap.Time("before", cutoff))
	}
	return removed, nil
}

// Schedule registers the prune job on scheduler with a crontab expression.
func (s *RetentionService) Schedule(scheduler gocron.Scheduler, crontab string) error {
	_, err := scheduler.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() { _, _ = s.Prune(context.Background()) }),
		gocron.WithName("Prune fetch records"),
	)
	return err
}
