package judge

import (
	"testing"

	"judgeflow/internal/domain/model"
)

func TestAggregateOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcomes []ExecutionOutcome
		expected int
		want     Aggregate
	}{
		{
			name: "all accepted reports worst-case metrics",
			outcomes: []ExecutionOutcome{
				{Status: StatusAccepted, TimeMs: 2, MemoryKb: 1000},
				{Status: StatusAccepted, TimeMs: 9, MemoryKb: 1800},
				{Status: StatusAccepted, TimeMs: 4, MemoryKb: 1200},
			},
			expected: 3,
			want: Aggregate{
				Verdict:     model.VerdictAccepted,
				PassedCount: 3,
				TotalCount:  3,
				RuntimeMs:   9,
				MemoryKb:    1800,
			},
		},
		{
			name: "lowest-indexed failure decides verdict and metrics",
			outcomes: []ExecutionOutcome{
				{Status: StatusAccepted, TimeMs: 3, MemoryKb: 900},
				{Status: StatusTimeLimitExceeded, TimeMs: 2000, MemoryKb: 1100},
				{Status: StatusWrongAnswer, TimeMs: 5, MemoryKb: 5000},
			},
			expected: 3,
			want: Aggregate{
				Verdict:     model.VerdictTimeLimitExceeded,
				PassedCount: 1,
				TotalCount:  3,
				RuntimeMs:   2000,
				MemoryKb:    1100,
			},
		},
		{
			name: "passes after the failure still count",
			outcomes: []ExecutionOutcome{
				{Status: StatusWrongAnswer, TimeMs: 1, MemoryKb: 100},
				{Status: StatusAccepted, TimeMs: 2, MemoryKb: 200},
				{Status: StatusAccepted, TimeMs: 3, MemoryKb: 300},
			},
			expected: 3,
			want: Aggregate{
				Verdict:     model.VerdictWrongAnswer,
				PassedCount: 2,
				TotalCount:  3,
				RuntimeMs:   1,
				MemoryKb:    100,
			},
		},
		{
			name: "short-circuited tail reads as internal error slots",
			outcomes: []ExecutionOutcome{
				{Status: StatusAccepted, TimeMs: 2, MemoryKb: 500},
				{Status: StatusCompileError},
				{Status: StatusInternalError},
				{Status: StatusInternalError},
			},
			expected: 4,
			want: Aggregate{
				Verdict:     model.VerdictCompileError,
				PassedCount: 1,
				TotalCount:  4,
			},
		},
		{
			name: "count mismatch is an internal error",
			outcomes: []ExecutionOutcome{
				{Status: StatusAccepted, TimeMs: 2, MemoryKb: 500},
			},
			expected: 3,
			want: Aggregate{
				Verdict:     model.VerdictInternalError,
				PassedCount: 1,
				TotalCount:  3,
				RuntimeMs:   2,
				MemoryKb:    500,
			},
		},
		{
			name:     "empty batch with zero expected is accepted vacuously",
			outcomes: nil,
			expected: 0,
			want: Aggregate{
				Verdict:    model.VerdictAccepted,
				TotalCount: 0,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := AggregateOutcomes(tt.outcomes, tt.expected)
			if got != tt.want {
				t.Errorf("AggregateOutcomes() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
