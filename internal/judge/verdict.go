package judge

import "judgeflow/internal/domain/model"

// Aggregate is the reduction of a batch's per-case outcomes into one verdict
// plus summary metrics.
type Aggregate struct {
	Verdict     model.SubmissionVerdict
	PassedCount int
	TotalCount  int
	RuntimeMs   float64
	MemoryKb    int
}

// AggregateOutcomes reduces ordered outcomes into a verdict. expected is the
// number of requests dispatched; a count mismatch marks the whole batch as an
// internal error with counts reflecting only what was received.
//
// The verdict of a non-accepted batch is the status of the lowest-indexed
// failing case, which is deterministic because the dispatcher's output is
// ordered by original case index. Runtime and memory report the worst case
// observed when accepted, and the failing case's own measurements otherwise.
func AggregateOutcomes(outcomes []ExecutionOutcome, expected int) Aggregate {
	agg := Aggregate{TotalCount: expected}

	firstFailing := -1
	for i, out := range outcomes {
		if out.Status == StatusAccepted {
			agg.PassedCount++
		} else if firstFailing < 0 {
			firstFailing = i
		}
		if out.TimeMs > agg.RuntimeMs {
			agg.RuntimeMs = out.TimeMs
		}
		if out.MemoryKb > agg.MemoryKb {
			agg.MemoryKb = out.MemoryKb
		}
	}

	if len(outcomes) != expected {
		agg.Verdict = model.VerdictInternalError
		if agg.PassedCount > agg.TotalCount {
			agg.PassedCount = agg.TotalCount
		}
		return agg
	}

	if firstFailing < 0 {
		agg.Verdict = model.VerdictAccepted
		return agg
	}

	failed := outcomes[firstFailing]
	agg.Verdict = failed.Status.Verdict()
	agg.RuntimeMs = failed.TimeMs
	agg.MemoryKb = failed.MemoryKb
	return agg
}
