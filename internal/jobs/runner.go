package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Task performs the backend operation for one accepted job and returns
// its structured result.
type Task func(ctx context.Context) (any, error)

// Runner drives accepted jobs through pending -> running -> terminal.
// Each dispatched job runs in its own goroutine and is the sole writer
// of its record, so no record-level locking is needed beyond the store's.
type Runner struct {
	store  Store
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRunner creates a runner that records transitions in store.
func NewRunner(store Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, logger: logger}
}

// Dispatch schedules task for the job identified by id and returns
// immediately. Completion is observed only through the store. Failures,
// including panics inside task, become a failed record and never
// propagate past the task boundary.
//
// The task runs on a background context: jobs are decoupled from the
// request that triggered them and run to completion or failure.
func (r *Runner) Dispatch(id string, task Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx := context.Background()

		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("job panicked", "job_id", id, "panic", rec)
				r.fail(ctx, id, fmt.Errorf("internal panic: %v", rec))
			}
		}()

		if err := r.store.Update(ctx, id, func(s *Status) {
			s.State = StateRunning
		}); err != nil {
			// The record must exist before the task starts; a missing
			// record here is a bug in the caller.
			r.logger.Error("job record missing at start", "job_id", id, "error", err)
			return
		}

		result, err := task(ctx)
		if err != nil {
			r.fail(ctx, id, err)
			return
		}

		if err := r.store.Update(ctx, id, func(s *Status) {
			s.State = StateCompleted
			s.Result = result
		}); err != nil {
			r.logger.Error("failed to record job completion", "job_id", id, "error", err)
			return
		}
		r.logger.Info("job completed", "job_id", id)
	}()
}

// Wait blocks until all dispatched jobs have reached a terminal state.
// Used by tests and by graceful shutdown to drain in-flight work.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) fail(ctx context.Context, id string, cause error) {
	if err := r.store.Update(ctx, id, func(s *Status) {
		s.State = StateFailed
		s.Error = cause.Error()
	}); err != nil {
		r.logger.Error("failed to record job failure", "job_id", id, "error", err)
		return
	}
	r.logger.Error("job failed", "job_id", id, "error", cause)
}
