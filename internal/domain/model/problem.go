package model

import (
	"time"
)

type ProblemDifficulty string
type ProblemStatus string

const (
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"

	StatusDraft             ProblemStatus = "Draft"
	StatusPendingValidation ProblemStatus = "PendingValidation"
	StatusPublished         ProblemStatus = "Published"
	StatusRejected          ProblemStatus = "Rejected"
)

type Problem struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description"`
	Difficulty       ProblemDifficulty `json:"difficulty"`
	Status           ProblemStatus     `json:"status"`
	SolutionCode     *string           `json:"solution_code,omitempty"` // Admin only view
	SolutionLanguage *Language         `json:"solution_language,omitempty"`
	RuntimeLimitMs   int               `json:"runtime_limit_ms"`
	MemoryLimitKb    int               `json:"memory_limit_kb"`
	CreatedByID      *string           `json:"created_by_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	TestCases        []TestCase        `json:"test_cases,omitempty"` // Hidden cases stripped for non-admin views
}

// TestCaseVisibility splits a problem's cases into the subset shown to users
// (judged on "run") and the subset judged only on "submit".
type TestCaseVisibility string

const (
	VisibilityVisible TestCaseVisibility = "Visible"
	VisibilityHidden  TestCaseVisibility = "Hidden"

	// VisibilityAll selects both subsets, in stable sort order.
	VisibilityAll TestCaseVisibility = "All"
)

// TestCase is immutable once attached to a problem.
type TestCase struct {
	ID             string             `json:"id"`
	ProblemID      string             `json:"problem_id"`
	Input          string             `json:"input"`
	ExpectedOutput string             `json:"expected_output"`
	Explanation    *string            `json:"explanation,omitempty"`
	Visibility     TestCaseVisibility `json:"visibility"`
	SortOrder      int                `json:"sort_order"`
	CreatedAt      time.Time          `json:"created_at"`
}
