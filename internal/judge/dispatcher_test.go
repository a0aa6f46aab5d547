package judge

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeExecutor scripts per-case outcomes by stdin and records call traffic.
type fakeExecutor struct {
	outcomes map[string]ExecutionOutcome
	delay    func(stdin string) time.Duration

	calls     atomic.Int32
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	honorsCtx bool
}

func (f *fakeExecutor) Execute(ctx context.Context, req ExecutionRequest) ExecutionOutcome {
	f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	var d time.Duration
	if f.delay != nil {
		d = f.delay(req.Stdin)
	}
	if f.honorsCtx {
		select {
		case <-ctx.Done():
			return ExecutionOutcome{Status: StatusInternalError, Stderr: ctx.Err().Error()}
		case <-time.After(d):
		}
	} else if d > 0 {
		time.Sleep(d)
	}

	if out, ok := f.outcomes[req.Stdin]; ok {
		return out
	}
	return ExecutionOutcome{Status: StatusAccepted, Stdout: req.Stdin}
}

func makeRequests(n int) []ExecutionRequest {
	reqs := make([]ExecutionRequest, n)
	for i := range reqs {
		reqs[i] = ExecutionRequest{Stdin: fmt.Sprintf("case-%d", i), TimeLimitMs: 1000}
	}
	return reqs
}

// Later cases finish first, but outcomes still land at their original index.
func TestRunBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	const n = 8
	exec := &fakeExecutor{
		delay: func(stdin string) time.Duration {
			// case-0 is the slowest, case-7 the fastest
			var i int
			fmt.Sscanf(stdin, "case-%d", &i)
			return time.Duration(n-i) * 5 * time.Millisecond
		},
	}
	d := NewDispatcher(exec, 4, time.Minute, zap.NewNop())

	outcomes := d.RunBatch(context.Background(), makeRequests(n), RunAll)

	if len(outcomes) != n {
		t.Fatalf("len(outcomes) = %d, want %d", len(outcomes), n)
	}
	for i, out := range outcomes {
		want := fmt.Sprintf("case-%d", i)
		if out.Stdout != want {
			t.Errorf("outcomes[%d].Stdout = %q, want %q", i, out.Stdout, want)
		}
	}
}

func TestRunBatchRunAllExecutesEverything(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{
		outcomes: map[string]ExecutionOutcome{
			"case-1": {Status: StatusWrongAnswer, Stdout: "case-1"},
		},
	}
	d := NewDispatcher(exec, 2, time.Minute, zap.NewNop())

	outcomes := d.RunBatch(context.Background(), makeRequests(5), RunAll)

	if n := exec.calls.Load(); n != 5 {
		t.Errorf("executor calls = %d, want 5 in RunAll mode", n)
	}
	if outcomes[1].Status != StatusWrongAnswer {
		t.Errorf("outcomes[1].Status = %v, want WrongAnswer", outcomes[1].Status)
	}
	for _, i := range []int{0, 2, 3, 4} {
		if outcomes[i].Status != StatusAccepted {
			t.Errorf("outcomes[%d].Status = %v, want Accepted", i, outcomes[i].Status)
		}
	}
}

// With one worker slot the dispatch is sequential, so a failure at index 1
// must prevent every later case from reaching the executor.
func TestRunBatchStopOnFailureShortCircuits(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{
		outcomes: map[string]ExecutionOutcome{
			"case-1": {Status: StatusWrongAnswer, Stdout: "case-1"},
		},
	}
	d := NewDispatcher(exec, 1, time.Minute, zap.NewNop())

	outcomes := d.RunBatch(context.Background(), makeRequests(5), StopOnFailure)

	if n := exec.calls.Load(); n != 2 {
		t.Errorf("executor calls = %d, want 2 after short-circuit", n)
	}
	if outcomes[0].Status != StatusAccepted {
		t.Errorf("outcomes[0].Status = %v, want Accepted", outcomes[0].Status)
	}
	if outcomes[1].Status != StatusWrongAnswer {
		t.Errorf("outcomes[1].Status = %v, want WrongAnswer", outcomes[1].Status)
	}
	for _, i := range []int{2, 3, 4} {
		if outcomes[i].Status != StatusInternalError {
			t.Errorf("outcomes[%d].Status = %v, want synthesized InternalError", i, outcomes[i].Status)
		}
	}
}

func TestRunBatchStopOnFailureAllAccepted(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{}
	d := NewDispatcher(exec, 3, time.Minute, zap.NewNop())

	outcomes := d.RunBatch(context.Background(), makeRequests(6), StopOnFailure)

	if n := exec.calls.Load(); n != 6 {
		t.Errorf("executor calls = %d, want 6", n)
	}
	for i, out := range outcomes {
		if out.Status != StatusAccepted {
			t.Errorf("outcomes[%d].Status = %v, want Accepted", i, out.Status)
		}
	}
}

func TestRunBatchRespectsConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{
		delay: func(string) time.Duration { return 10 * time.Millisecond },
	}
	d := NewDispatcher(exec, 2, time.Minute, zap.NewNop())

	d.RunBatch(context.Background(), makeRequests(8), RunAll)

	if max := exec.maxSeen.Load(); max > 2 {
		t.Errorf("max concurrent executions = %d, want <= 2", max)
	}
}

// A batch whose cases outlast the deadline still returns, with unfinished
// slots reported as internal errors.
func TestRunBatchDeadlineReturnsPartialOutcomes(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{
		honorsCtx: true,
		delay:     func(string) time.Duration { return time.Minute },
	}
	reqs := make([]ExecutionRequest, 3)
	for i := range reqs {
		reqs[i] = ExecutionRequest{Stdin: fmt.Sprintf("case-%d", i), TimeLimitMs: 1}
	}
	d := NewDispatcher(exec, 1, 50*time.Millisecond, zap.NewNop())

	done := make(chan []ExecutionOutcome, 1)
	go func() { done <- d.RunBatch(context.Background(), reqs, RunAll) }()

	select {
	case outcomes := <-done:
		if len(outcomes) != 3 {
			t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
		}
		for i, out := range outcomes {
			if out.Status != StatusInternalError {
				t.Errorf("outcomes[%d].Status = %v, want InternalError", i, out.Status)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunBatch did not return after batch deadline")
	}
}
