package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/grocerline/basketd/internal/domain/model"
)

// SyncFacade exposes the subset of application functionality required by the
// retrier.
type SyncFacade interface {
	SyncIfNeeded(ctx context.Context) error
	CatalogStatus(ctx context.Context) (model.LoadStatus, error)
	CatalogStatusStream(ctx context.Context) <-chan model.LoadStatus
}

// RetryState is the user-visible retry progress for one catalog segment.
// Terminal means the retry budget is exhausted and no further attempts will
// be made this session.
type RetryState struct {
	Kind      model.ProductKind
	Attempt   int
	NextDelay time.Duration
	Terminal  bool
}

// Backoff computes the capped exponential delay for an attempt index.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// SyncRetrier drives repeated sync attempts against a flaky catalog with
// bounded exponential backoff. Attempt 0 retries silently; later attempts
// publish a cooldown state so the caller can show "retrying in N" instead of
// a raw error.
type SyncRetrier struct {
	facade     SyncFacade
	baseDelay  time.Duration
	maxDelay   time.Duration
	maxRetries int
	logger     *slog.Logger

	states chan RetryState
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSyncRetrier constructs the retry driver.
func NewSyncRetrier(facade SyncFacade, baseDelay, maxDelay time.Duration, maxRetries int, logger *slog.Logger) *SyncRetrier {
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &SyncRetrier{
		facade:     facade,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		maxRetries: maxRetries,
		logger:     logger,
		states:     make(chan RetryState, 16),
	}
}

// States exposes published retry states.
func (r *SyncRetrier) States() <-chan RetryState {
	return r.states
}

// Start launches one retry loop per catalog segment.
func (r *SyncRetrier) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for _, kind := range model.Kinds {
		r.wg.Add(1)
		go func(kind model.ProductKind) {
			defer r.wg.Done()
			r.runKind(runCtx, kind)
		}(kind)
	}
}

// Stop cancels the backoff waits and waits for the loops to finish. An
// in-flight sync is allowed to complete; it mutates durable state that must
// not be left half-applied.
func (r *SyncRetrier) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *SyncRetrier) runKind(ctx context.Context, kind model.ProductKind) {
	statusCh := r.facade.CatalogStatusStream(ctx)

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}

		status, err := r.facade.CatalogStatus(ctx)
		if err == nil && status.Loaded(kind) {
			return
		}

		if attempt >= r.maxRetries {
			r.publish(RetryState{Kind: kind, Attempt: attempt, Terminal: true})
			r.logger.Error("catalog sync gave up", slog.String("kind", string(kind)), slog.Int("attempts", attempt))
			return
		}

		// The sync must finish its durable writes even if we are stopped
		// mid-wait, hence the detached context.
		if err := r.facade.SyncIfNeeded(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("catalog sync attempt failed",
				slog.String("kind", string(kind)),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		}

		status, err = r.facade.CatalogStatus(ctx)
		if err == nil && status.Loaded(kind) {
			return
		}

		delay := Backoff(r.baseDelay, r.maxDelay, attempt)
		if attempt >= 1 {
			r.publish(RetryState{Kind: kind, Attempt: attempt, NextDelay: delay})
		}

		timer := time.NewTimer(delay)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case status, ok := <-statusCh:
				if !ok {
					statusCh = nil
					continue
				}
				if status.Loaded(kind) {
					timer.Stop()
					return
				}
			case <-timer.C:
				break wait
			}
		}
	}
}

func (r *SyncRetrier) publish(state RetryState) {
	select {
	case r.states <- state:
	default:
	}
}
