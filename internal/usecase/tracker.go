package usecase

import (
	"context"
	"sync"

	"github.com/vitos/coin_tracker/internal/domain"
	"go.uber.org/zap"
)

type UpdateType string

const (
	UpdateLoading UpdateType = "loading"
	UpdateDetail  UpdateType = "detail"
	UpdateError   UpdateType = "error"
)

// Update is one state change of the tracked coin.
type Update struct {
	Type       UpdateType
	Generation uint64
	CoinID     string
	Title      string
	Detail     DetailState
	Err        error
}

// Tracker follows one selected coin at a time. Every Select bumps the
// generation and cancels the previous wait; results produced for an older
// generation are dropped. deliver is always called with the tracker locked,
// so calls never overlap.
type Tracker struct {
	service    *CoinService
	deliver    func(Update)
	logger     *zap.Logger
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
}

func NewTracker(service *CoinService, deliver func(Update), logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		service: service,
		deliver: deliver,
		logger:  logger,
	}
}

// Select switches the tracker to coinID and returns the new generation.
func (t *Tracker) Select(coinID string, hint *domain.NavigationHint) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return t.generation
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.generation++
	gen := t.generation

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	t.deliver(Update{
		Type:       UpdateLoading,
		Generation: gen,
		CoinID:     coinID,
		Title:      DetailState{CoinID: coinID}.Title(hint),
	})

	t.wg.Add(1)
	go t.follow(ctx, gen, coinID, hint)

	return gen
}

func (t *Tracker) follow(ctx context.Context, gen uint64, coinID string, hint *domain.NavigationHint) {
	defer t.wg.Done()

	d := t.service.Detail(ctx, coinID)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation || t.closed || d.Loading() {
		t.logger.Debug("Dropping stale selection",
			zap.String("coin_id", coinID),
			zap.Uint64("generation", gen),
			zap.Uint64("current", t.generation))
		return
	}

	u := Update{
		Type:       UpdateDetail,
		Generation: gen,
		CoinID:     coinID,
		Title:      d.Title(hint),
		Detail:     d,
	}
	if err := d.Err(); err != nil {
		u.Type = UpdateError
		u.Err = err
	}
	t.deliver(u)
}

// Generation returns the current selection generation.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// Close cancels the pending selection and waits for its goroutine.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()

	t.wg.Wait()
}
