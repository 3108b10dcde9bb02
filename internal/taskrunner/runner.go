// Package taskrunner executes control routines asynchronously with an
// at-most-one-outstanding guarantee per runner.
package taskrunner

import (
	"context"
	"sync"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/routine"
)

// Compile-time interface check.
var _ domain.TaskRunner = (*Runner)(nil)

// Runner runs one control routine at a time on its own goroutine. The
// state machine never blocks on it: Dispatch returns immediately and
// completion is observed by polling Done.
type Runner struct {
	reg *routine.Registry
	log *logger.Logger
	ctx context.Context // parent for all dispatched routines

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	lastErr error
	wg      sync.WaitGroup
}

// New creates a runner. ctx is the parent context of every dispatched
// routine; cancelling it stops the outstanding routine at its next tick.
func New(ctx context.Context, reg *routine.Registry, log *logger.Logger) *Runner {
	return &Runner{reg: reg, log: log, ctx: ctx}
}

// Dispatch starts the named routine with the given parameters on a new
// goroutine. Returns false iff a routine is already outstanding; the
// new routine is not queued in that case.
func (r *Runner) Dispatch(name string, params domain.Params) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		r.log.Warn("dispatch of %q refused: a task is already running", name)
		return false
	}

	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel
	r.running = true
	r.lastErr = nil

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		r.log.Debug("task %q started", name)
		err := r.reg.Run(ctx, name, params)

		r.mu.Lock()
		r.running = false
		r.lastErr = err
		r.mu.Unlock()

		switch {
		case err == nil:
			r.log.Debug("task %q finished", name)
		case ctx.Err() != nil:
			r.log.Info("task %q cancelled", name)
		default:
			r.log.Error("task %q failed: %v", name, err)
		}
	}()

	return true
}

// Done reports whether the last dispatched routine has finished. True
// when nothing was ever dispatched.
func (r *Runner) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.running
}

// Cancel signals the outstanding routine, if any, to stop at its next
// tick. Does not wait; pair with Wait when teardown must be ordered.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// Wait blocks until the outstanding routine, if any, has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Err returns the error of the most recently finished routine, nil
// while one is still running.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
