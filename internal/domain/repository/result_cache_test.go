package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewResultCache(client, ttl), mr
}

func TestResultCacheRunResultRoundTrip(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	res := &model.RunResult{
		ID:      "run-1",
		Success: true,
		Runtime: 0.012,
		Memory:  2048,
		TestCases: []model.RunCaseResult{
			{Stdin: "1 2", ExpectedOutput: "3", Stdout: "3", StatusID: 3, Status: "Accepted", TimeMs: 12, MemoryKb: 2048},
		},
	}
	if err := cache.PutRunResult(ctx, res); err != nil {
		t.Fatalf("PutRunResult() error = %v", err)
	}

	got, err := cache.GetRunResult(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRunResult() error = %v", err)
	}
	if got.ID != res.ID || !got.Success || len(got.TestCases) != 1 {
		t.Errorf("GetRunResult() = %+v, want stored result", got)
	}
	if got.TestCases[0].StatusID != 3 {
		t.Errorf("TestCases[0].StatusID = %d, want 3", got.TestCases[0].StatusID)
	}
}

func TestResultCacheMissIsNotFound(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, time.Minute)

	if _, err := cache.GetRunResult(context.Background(), "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRunResult() error = %v, want ErrNotFound", err)
	}
	if _, err := cache.GetSubmission(context.Background(), "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetSubmission() error = %v, want ErrNotFound", err)
	}
}

func TestResultCacheEntriesExpire(t *testing.T) {
	t.Parallel()

	cache, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	if err := cache.PutRunResult(ctx, &model.RunResult{ID: "run-1"}); err != nil {
		t.Fatalf("PutRunResult() error = %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := cache.GetRunResult(ctx, "run-1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetRunResult() after TTL error = %v, want ErrNotFound", err)
	}
}

func TestResultCacheSubmissionRoundTrip(t *testing.T) {
	t.Parallel()

	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	sub := &model.Submission{
		ID:          "sub-1",
		UserID:      "user-1",
		ProblemID:   "prob-1",
		Language:    model.LangCpp,
		Mode:        model.ModeSubmit,
		Status:      model.StatusFinished,
		Verdict:     model.VerdictWrongAnswer,
		PassedCount: 4,
		TotalCount:  5,
		RuntimeMs:   12,
		MemoryKb:    2048,
	}
	if err := cache.PutSubmission(ctx, sub); err != nil {
		t.Fatalf("PutSubmission() error = %v", err)
	}

	got, err := cache.GetSubmission(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetSubmission() error = %v", err)
	}
	if got.Verdict != model.VerdictWrongAnswer || got.PassedCount != 4 || got.TotalCount != 5 {
		t.Errorf("GetSubmission() = %+v, want stored summary", got)
	}
}
