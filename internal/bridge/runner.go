package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner executes deferred follow-up work on background goroutines with a
// shared cancellation context, so action handling can return quickly while
// bookkeeping completes behind it.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *slog.Logger
}

func NewRunner(log *slog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{ctx: ctx, cancel: cancel, log: log}
}

// Go runs fn on its own goroutine. Errors are logged, not returned; the
// caller has already answered by the time fn runs.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(r.ctx); err != nil {
			r.log.Error("background task failed", "task", name, "error", err)
		}
	}()
}

// Shutdown cancels in-flight tasks and waits up to timeout for them to
// finish.
func (r *Runner) Shutdown(timeout time.Duration) {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		r.log.Warn("background tasks did not finish before shutdown", "timeout", timeout)
	}
}
