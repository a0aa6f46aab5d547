package service

import (
	"context"
	"database/sql"
	"time"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"
	"judgeflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ProblemService is thin glue over the problem store. Its one interesting
// job is validation: a new problem's reference solution is judged through
// the same pipeline as user submissions before the problem is published.
type ProblemService struct {
	problemRepo  repository.ProblemRepository
	judgeService *JudgeService
	db           *sql.DB // For transactions
	log          *zap.Logger
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	judgeService *JudgeService,
	db *sql.DB,
	log *zap.Logger,
) *ProblemService {
	return &ProblemService{
		problemRepo:  problemRepo,
		judgeService: judgeService,
		db:           db,
		log:          log,
	}
}

type CreateTestCaseRequest struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Explanation    *string `json:"explanation,omitempty"`
	Hidden         bool    `json:"hidden"`
}

type CreateProblemRequest struct {
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Difficulty       model.ProblemDifficulty `json:"difficulty"`
	SolutionCode     string                  `json:"solution_code"`
	SolutionLanguage string                  `json:"solution_language"`
	RuntimeLimitMs   int                     `json:"runtime_limit_ms"`
	MemoryLimitKb    int                     `json:"memory_limit_kb"`
	TestCases        []CreateTestCaseRequest `json:"test_cases"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" || req.Difficulty == "" || req.SolutionCode == "" || len(req.TestCases) == 0 {
		return nil, common.Errorf("missing required fields for problem creation: %w", common.ErrBadRequest)
	}
	solutionLang, err := model.ParseLanguage(req.SolutionLanguage)
	if err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrBadRequest)
	}

	hasVisible := false
	for _, tc := range req.TestCases {
		if !tc.Hidden {
			hasVisible = true
			break
		}
	}
	if !hasVisible {
		return nil, common.Errorf("at least one visible test case is required: %w", common.ErrBadRequest)
	}

	problem := &model.Problem{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Slug:             slug.Make(req.Title),
		Description:      req.Description,
		Difficulty:       req.Difficulty,
		Status:           model.StatusPendingValidation,
		SolutionCode:     &req.SolutionCode,
		SolutionLanguage: &solutionLang,
		RuntimeLimitMs:   req.RuntimeLimitMs,
		MemoryLimitKb:    req.MemoryLimitKb,
		CreatedByID:      &userID,
	}
	if problem.RuntimeLimitMs <= 0 {
		problem.RuntimeLimitMs = 2000
	}
	if problem.MemoryLimitKb <= 0 {
		problem.MemoryLimitKb = 65536
	}

	cases := make([]model.TestCase, len(req.TestCases))
	for i, tc := range req.TestCases {
		visibility := model.VisibilityVisible
		if tc.Hidden {
			visibility = model.VisibilityHidden
		}
		cases[i] = model.TestCase{
			ID:             uuid.NewString(),
			ProblemID:      problem.ID,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Explanation:    tc.Explanation,
			Visibility:     visibility,
			SortOrder:      i,
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	if err := s.problemRepo.AddTestCases(ctx, tx, problem.ID, cases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	go s.validateProblem(problem)

	s.log.Info("problem created, validation started",
		zap.String("problem_id", problem.ID),
		zap.String("slug", problem.Slug))
	return problem, nil
}

// validateProblem judges the reference solution and publishes or rejects the
// problem. Runs detached from the creating request; the dispatcher's batch
// deadline bounds it.
func (s *ProblemService) validateProblem(problem *model.Problem) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Validation runs against a problem that is not yet published, so it
	// bypasses the published gate by judging the reference directly.
	passed, err := s.judgeService.ValidateReference(ctx, problem)

	status := model.StatusRejected
	if err == nil && passed {
		status = model.StatusPublished
	}
	if err != nil {
		s.log.Error("problem validation failed to run",
			zap.String("problem_id", problem.ID),
			zap.Error(err))
	}

	if err := s.problemRepo.UpdateProblemStatus(ctx, problem.ID, status); err != nil {
		s.log.Error("failed to update problem status after validation",
			zap.String("problem_id", problem.ID),
			zap.Error(err))
		return
	}
	s.log.Info("problem validation finished",
		zap.String("problem_id", problem.ID),
		zap.String("status", string(status)))
}

// GetProblem returns a problem by slug. Hidden cases and the reference
// solution are stripped unless the caller is an admin.
func (s *ProblemService) GetProblem(ctx context.Context, problemSlug, callerRole string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, problemSlug)
	if err != nil {
		return nil, err
	}

	isAdmin := callerRole == model.RoleAdmin
	if !isAdmin && problem.Status != model.StatusPublished {
		return nil, common.ErrNotFound
	}

	visibility := model.VisibilityVisible
	if isAdmin {
		visibility = model.VisibilityAll
	}
	cases, err := s.problemRepo.GetTestCases(ctx, problem.ID, visibility)
	if err != nil {
		return nil, common.Errorf("failed to fetch test cases: %w", err)
	}
	problem.TestCases = cases

	if !isAdmin {
		problem.SolutionCode = nil
		problem.SolutionLanguage = nil
	}
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int, difficulty model.ProblemDifficulty, callerRole string) ([]model.Problem, int, error) {
	status := model.StatusPublished
	if callerRole == model.RoleAdmin {
		status = "" // Admins see every status
	}
	offset := (page - 1) * pageSize
	return s.problemRepo.ListProblems(ctx, pageSize, offset, difficulty, status)
}
