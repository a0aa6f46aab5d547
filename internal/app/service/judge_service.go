package service

import (
	"context"
	"strings"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"
	"judgeflow/internal/domain/repository"
	"judgeflow/internal/judge"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JudgeService is the entry point of the judging pipeline. It validates a
// request, fans its test cases out through the dispatcher, aggregates the
// outcomes into a verdict and owns every write to the submission record.
type JudgeService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	dispatcher     *judge.Dispatcher
	resultCache    *repository.ResultCache
	log            *zap.Logger
}

func NewJudgeService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	dispatcher *judge.Dispatcher,
	resultCache *repository.ResultCache,
	log *zap.Logger,
) *JudgeService {
	return &JudgeService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		dispatcher:     dispatcher,
		resultCache:    resultCache,
		log:            log,
	}
}

type RunCodeRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// SubmitResponse mirrors the contract the frontend consumes. Runtime is in
// seconds, memory in KB.
type SubmitResponse struct {
	SubmissionID    string  `json:"submission_id"`
	Accepted        bool    `json:"accepted"`
	PassedTestCases int     `json:"passedTestCases"`
	TotalTestCases  int     `json:"totalTestCases"`
	Runtime         float64 `json:"runtime"`
	Memory          int     `json:"memory"`
	Error           string  `json:"error,omitempty"`
}

// RunCode evaluates the submission against the problem's visible cases only.
// Every case runs to completion and nothing durable is written; the result is
// cached with a TTL so the user can re-fetch it.
func (s *JudgeService) RunCode(ctx context.Context, userID string, req RunCodeRequest) (*model.RunResult, error) {
	problem, lang, cases, err := s.validate(ctx, req.ProblemID, req.Language, req.Code, model.VisibilityVisible)
	if err != nil {
		return nil, err
	}

	requests := buildRequests(problem, lang, req.Code, cases)
	outcomes := s.dispatcher.RunBatch(ctx, requests, judge.RunAll)
	agg := judge.AggregateOutcomes(outcomes, len(requests))

	result := &model.RunResult{
		ID:      uuid.NewString(),
		Success: agg.Verdict == model.VerdictAccepted,
		Runtime: agg.RuntimeMs / 1000.0,
		Memory:  agg.MemoryKb,
	}
	for i, out := range outcomes {
		result.TestCases = append(result.TestCases, model.RunCaseResult{
			Stdin:          cases[i].Input,
			ExpectedOutput: cases[i].ExpectedOutput,
			Stdout:         out.Stdout,
			StatusID:       out.Status.RemoteID(),
			Status:         out.Status.String(),
			TimeMs:         out.TimeMs,
			MemoryKb:       out.MemoryKb,
		})
	}

	if err := s.resultCache.PutRunResult(context.WithoutCancel(ctx), result); err != nil {
		s.log.Warn("failed to cache run result", zap.String("run_id", result.ID), zap.Error(err))
	}

	s.log.Info("run evaluated",
		zap.String("user_id", userID),
		zap.String("problem_id", problem.ID),
		zap.Bool("success", result.Success),
		zap.Int("cases", len(cases)))
	return result, nil
}

// Submit evaluates the submission against the full case set (visible first,
// then hidden), persists the record through its whole lifecycle and links the
// problem into the user's solved set on acceptance.
func (s *JudgeService) Submit(ctx context.Context, userID string, req SubmitRequest) (*SubmitResponse, error) {
	problem, lang, cases, err := s.validate(ctx, req.ProblemID, req.Language, req.Code, model.VisibilityAll)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		ID:         uuid.NewString(),
		UserID:     userID,
		ProblemID:  problem.ID,
		Language:   lang,
		Code:       req.Code,
		Mode:       model.ModeSubmit,
		Status:     model.StatusPending,
		Verdict:    model.VerdictPending,
		TotalCount: len(cases),
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	// The record must reach Finished even if the caller disconnects
	// mid-judging, so lifecycle writes use a non-cancelable context.
	persistCtx := context.WithoutCancel(ctx)

	if err := s.submissionRepo.MarkRunning(persistCtx, sub.ID); err != nil {
		return nil, common.Errorf("failed to mark submission running: %w", err)
	}

	requests := buildRequests(problem, lang, req.Code, cases)
	outcomes := s.dispatcher.RunBatch(ctx, requests, judge.StopOnFailure)
	agg := judge.AggregateOutcomes(outcomes, len(requests))

	result := model.SubmissionResult{
		Verdict:     agg.Verdict,
		PassedCount: agg.PassedCount,
		TotalCount:  agg.TotalCount,
		RuntimeMs:   agg.RuntimeMs,
		MemoryKb:    agg.MemoryKb,
	}
	if err := s.submissionRepo.Finish(persistCtx, sub.ID, result); err != nil {
		return nil, common.Errorf("failed to finish submission %s: %w", sub.ID, err)
	}

	if agg.Verdict == model.VerdictAccepted {
		if err := s.submissionRepo.MarkProblemSolved(persistCtx, userID, problem.ID, sub.ID); err != nil {
			s.log.Warn("failed to mark problem solved",
				zap.String("user_id", userID),
				zap.String("problem_id", problem.ID),
				zap.Error(err))
		}
	}

	sub.Status = model.StatusFinished
	sub.Verdict = agg.Verdict
	sub.PassedCount = agg.PassedCount
	sub.TotalCount = agg.TotalCount
	sub.RuntimeMs = agg.RuntimeMs
	sub.MemoryKb = agg.MemoryKb
	if err := s.resultCache.PutSubmission(persistCtx, sub); err != nil {
		s.log.Warn("failed to cache submission summary", zap.String("submission_id", sub.ID), zap.Error(err))
	}

	s.log.Info("submission judged",
		zap.String("submission_id", sub.ID),
		zap.String("user_id", userID),
		zap.String("problem_id", problem.ID),
		zap.String("verdict", string(agg.Verdict)),
		zap.Int("passed", agg.PassedCount),
		zap.Int("total", agg.TotalCount))

	resp := &SubmitResponse{
		SubmissionID:    sub.ID,
		Accepted:        agg.Verdict == model.VerdictAccepted,
		PassedTestCases: agg.PassedCount,
		TotalTestCases:  agg.TotalCount,
		Runtime:         agg.RuntimeMs / 1000.0,
		Memory:          agg.MemoryKb,
	}
	if !resp.Accepted {
		resp.Error = string(agg.Verdict)
	}
	return resp, nil
}

// GetSubmission serves status polling, cache-first then Postgres. Readers
// never mutate the record.
func (s *JudgeService) GetSubmission(ctx context.Context, userID, id string) (*model.Submission, error) {
	if sub, err := s.resultCache.GetSubmission(ctx, id); err == nil {
		if sub.UserID != userID {
			return nil, common.ErrForbidden
		}
		return sub, nil
	}

	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, common.ErrForbidden
	}
	return sub, nil
}

func (s *JudgeService) GetRunResult(ctx context.Context, id string) (*model.RunResult, error) {
	return s.resultCache.GetRunResult(ctx, id)
}

func (s *JudgeService) ListSubmissions(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	return s.submissionRepo.ListForUserProblem(ctx, userID, problemID, limit, offset)
}

func (s *JudgeService) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return s.submissionRepo.GetLeaderboard(ctx, limit)
}

// ValidateReference judges a problem's reference solution against its full
// case set and reports whether it passes everywhere. Used before publishing.
func (s *JudgeService) ValidateReference(ctx context.Context, problem *model.Problem) (bool, error) {
	if problem.SolutionCode == nil || problem.SolutionLanguage == nil {
		return false, common.Errorf("problem %s has no reference solution: %w", problem.ID, common.ErrValidation)
	}
	cases, err := s.problemRepo.GetTestCases(ctx, problem.ID, model.VisibilityAll)
	if err != nil {
		return false, common.Errorf("failed to fetch test cases for problem %s: %w", problem.ID, err)
	}
	if len(cases) == 0 {
		return false, common.Errorf("problem %s has no test cases: %w", problem.ID, common.ErrValidation)
	}

	requests := buildRequests(problem, *problem.SolutionLanguage, *problem.SolutionCode, cases)
	outcomes := s.dispatcher.RunBatch(ctx, requests, judge.StopOnFailure)
	agg := judge.AggregateOutcomes(outcomes, len(requests))
	return agg.Verdict == model.VerdictAccepted, nil
}

// validate is the gate in front of any remote call: bad input comes back as a
// validation error and nothing is dispatched or persisted.
func (s *JudgeService) validate(ctx context.Context, problemID, language, code string, visibility model.TestCaseVisibility) (*model.Problem, model.Language, []model.TestCase, error) {
	if strings.TrimSpace(code) == "" {
		return nil, "", nil, common.Errorf("no code supplied: %w", common.ErrValidation)
	}
	lang, err := model.ParseLanguage(language)
	if err != nil {
		return nil, "", nil, common.Errorf("%v: %w", err, common.ErrValidation)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, "", nil, common.Errorf("problem not found: %w", err)
	}
	if problem.Status != model.StatusPublished {
		return nil, "", nil, common.Errorf("problem is not published: %w", common.ErrForbidden)
	}

	cases, err := s.problemRepo.GetTestCases(ctx, problem.ID, visibility)
	if err != nil {
		return nil, "", nil, common.Errorf("failed to fetch test cases: %w", err)
	}
	if len(cases) == 0 {
		return nil, "", nil, common.Errorf("problem has no test cases of requested visibility: %w", common.ErrValidation)
	}
	return problem, lang, cases, nil
}

func buildRequests(problem *model.Problem, lang model.Language, code string, cases []model.TestCase) []judge.ExecutionRequest {
	requests := make([]judge.ExecutionRequest, len(cases))
	for i, tc := range cases {
		requests[i] = judge.ExecutionRequest{
			SourceCode:     code,
			Language:       lang,
			Stdin:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			TimeLimitMs:    problem.RuntimeLimitMs,
			MemoryLimitKb:  problem.MemoryLimitKb,
		}
	}
	return requests
}
