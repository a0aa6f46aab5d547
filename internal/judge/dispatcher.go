package judge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// BatchMode selects the dispatch policy for one submission's cases.
type BatchMode int

const (
	// RunAll executes every case to completion. Used for "run" mode, where
	// the user needs feedback on each example.
	RunAll BatchMode = iota

	// StopOnFailure stops dispatching new cases once any case fails.
	// In-flight cases finish; skipped slots are synthesized as internal
	// errors. Used for "submit" mode.
	StopOnFailure
)

// Dispatcher fans a batch of execution requests out to the judge service and
// fans the outcomes back in, preserving request order. Admission into the
// worker pool goes through a weighted semaphore shared across all concurrent
// submissions, so one large submission cannot starve the others: waiters are
// served in FIFO order.
type Dispatcher struct {
	exec     Executor
	sem      *semaphore.Weighted
	overhead time.Duration
	log      *zap.Logger
}

func NewDispatcher(exec Executor, maxInFlight int64, overhead time.Duration, log *zap.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if overhead <= 0 {
		overhead = 10 * time.Second
	}
	return &Dispatcher{
		exec:     exec,
		sem:      semaphore.NewWeighted(maxInFlight),
		overhead: overhead,
		log:      log,
	}
}

// RunBatch executes the requests with bounded concurrency and returns one
// outcome per request, ordered by original index regardless of completion
// order. The whole batch is bounded by the sum of per-case time limits plus a
// fixed overhead; when the deadline expires, in-flight calls are abandoned and
// unfinished slots come back as internal errors, so a batch always returns.
func (d *Dispatcher) RunBatch(ctx context.Context, reqs []ExecutionRequest, mode BatchMode) []ExecutionOutcome {
	ctx, cancel := context.WithTimeout(ctx, d.batchDeadline(reqs))
	defer cancel()

	outcomes := make([]ExecutionOutcome, len(reqs))
	var stop atomic.Bool
	var wg sync.WaitGroup

	for i := range reqs {
		if stop.Load() {
			outcomes[i] = skippedOutcome()
			continue
		}
		if err := d.sem.Acquire(ctx, 1); err != nil {
			// Batch deadline hit while waiting for a worker slot.
			outcomes[i] = skippedOutcome()
			continue
		}
		// Re-check after the wait: a sibling may have failed while this
		// case was queued for admission.
		if stop.Load() {
			d.sem.Release(1)
			outcomes[i] = skippedOutcome()
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer d.sem.Release(1)
			out := d.exec.Execute(ctx, reqs[i])
			outcomes[i] = out
			if mode == StopOnFailure && out.Status != StatusAccepted {
				stop.Store(true)
			}
		}(i)
	}

	wg.Wait()

	if ctx.Err() != nil {
		d.log.Warn("batch hit deadline, returning partial outcomes",
			zap.Int("cases", len(reqs)))
	}
	return outcomes
}

func (d *Dispatcher) batchDeadline(reqs []ExecutionRequest) time.Duration {
	total := d.overhead
	for _, req := range reqs {
		total += time.Duration(req.TimeLimitMs) * time.Millisecond
	}
	return total
}

func skippedOutcome() ExecutionOutcome {
	return ExecutionOutcome{Status: StatusInternalError}
}
