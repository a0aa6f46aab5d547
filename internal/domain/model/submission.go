package model

import "time"

// SubmissionMode distinguishes a "run" (visible cases, no durable record)
// from a "submit" (full evaluation, persisted).
type SubmissionMode string

const (
	ModeRun    SubmissionMode = "Run"
	ModeSubmit SubmissionMode = "Submit"
)

// SubmissionStatus is the lifecycle state of a submission record. It only
// moves forward: Pending -> Running -> Finished.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "Pending"
	StatusRunning  SubmissionStatus = "Running"
	StatusFinished SubmissionStatus = "Finished"
)

// SubmissionVerdict is the overall classification once judging completes.
type SubmissionVerdict string

const (
	VerdictPending             SubmissionVerdict = "Pending"
	VerdictAccepted            SubmissionVerdict = "Accepted"
	VerdictWrongAnswer         SubmissionVerdict = "WrongAnswer"
	VerdictCompileError        SubmissionVerdict = "CompileError"
	VerdictRuntimeError        SubmissionVerdict = "RuntimeError"
	VerdictTimeLimitExceeded   SubmissionVerdict = "TimeLimitExceeded"
	VerdictMemoryLimitExceeded SubmissionVerdict = "MemoryLimitExceeded"
	VerdictInternalError       SubmissionVerdict = "InternalError"
)

type Submission struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	ProblemID   string            `json:"problem_id"`
	Language    Language          `json:"language"`
	Code        string            `json:"code"`
	Mode        SubmissionMode    `json:"mode"`
	Status      SubmissionStatus  `json:"status"`
	Verdict     SubmissionVerdict `json:"verdict"`
	PassedCount int               `json:"passed_count"`
	TotalCount  int               `json:"total_count"`
	RuntimeMs   float64           `json:"runtime_ms"`
	MemoryKb    int               `json:"memory_kb"`
	CreatedAt   time.Time         `json:"created_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
}

// SubmissionResult is the aggregate written exactly once when a submission
// reaches Finished.
type SubmissionResult struct {
	Verdict     SubmissionVerdict `json:"verdict"`
	PassedCount int               `json:"passed_count"`
	TotalCount  int               `json:"total_count"`
	RuntimeMs   float64           `json:"runtime_ms"`
	MemoryKb    int               `json:"memory_kb"`
}

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	ProblemsSolved int    `json:"problems_solved"`
}
