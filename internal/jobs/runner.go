package jobs

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"
)

// Runner launches one background goroutine per accepted job, gated by a
// semaphore so the service refuses work instead of spawning unboundedly.
type Runner struct {
	sem *semaphore.Weighted
}

// NewRunner builds a runner allowing at most maxConcurrent jobs in flight.
func NewRunner(maxConcurrent int) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Runner{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// TryLaunch starts fn in a new goroutine if a slot is free and reports
// whether it was accepted. fn runs to completion with no cancellation
// signal; a recovered panic is logged so a broken job can never take the
// service down.
func (r *Runner) TryLaunch(jobID string, fn func(ctx context.Context)) bool {
	if !r.sem.TryAcquire(1) {
		return false
	}
	go func() {
		defer r.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("job worker panicked", "job_id", jobID, "panic", rec)
			}
		}()
		fn(context.Background())
	}()
	return true
}
