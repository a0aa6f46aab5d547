package service

import (
	"context"
	"errors"
	"testing"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"

	"go.uber.org/zap"
)

func newProblemServiceFixture(t *testing.T) (*ProblemService, *fakeProblemRepo) {
	t.Helper()

	solution := "int main() {}"
	lang := model.LangCpp
	repo := &fakeProblemRepo{
		problems: map[string]*model.Problem{
			testProblemID: {
				ID:               testProblemID,
				Title:            "Two Sum",
				Slug:             "two-sum",
				Status:           model.StatusPublished,
				SolutionCode:     &solution,
				SolutionLanguage: &lang,
				RuntimeLimitMs:   2000,
				MemoryLimitKb:    65536,
			},
		},
		cases: map[string][]model.TestCase{
			testProblemID: {
				{ID: "tc-v0", ProblemID: testProblemID, Input: "1", ExpectedOutput: "1", Visibility: model.VisibilityVisible},
				{ID: "tc-h0", ProblemID: testProblemID, Input: "2", ExpectedOutput: "2", Visibility: model.VisibilityHidden},
			},
		},
	}
	svc := NewProblemService(repo, nil, nil, zap.NewNop())
	return svc, repo
}

func TestCreateProblemValidation(t *testing.T) {
	t.Parallel()

	valid := CreateProblemRequest{
		Title:            "Two Sum",
		Description:      "Find two numbers that add up to a target.",
		Difficulty:       model.DifficultyEasy,
		SolutionCode:     "int main() {}",
		SolutionLanguage: "cpp",
		TestCases: []CreateTestCaseRequest{
			{Input: "1 2", ExpectedOutput: "3"},
		},
	}

	tests := []struct {
		name   string
		mutate func(req *CreateProblemRequest)
	}{
		{name: "missing title", mutate: func(r *CreateProblemRequest) { r.Title = "" }},
		{name: "missing description", mutate: func(r *CreateProblemRequest) { r.Description = "" }},
		{name: "missing solution", mutate: func(r *CreateProblemRequest) { r.SolutionCode = "" }},
		{name: "no test cases", mutate: func(r *CreateProblemRequest) { r.TestCases = nil }},
		{name: "unsupported language", mutate: func(r *CreateProblemRequest) { r.SolutionLanguage = "brainfuck" }},
		{name: "only hidden cases", mutate: func(r *CreateProblemRequest) {
			r.TestCases = []CreateTestCaseRequest{{Input: "1", ExpectedOutput: "1", Hidden: true}}
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, repo := newProblemServiceFixture(t)
			req := valid
			tt.mutate(&req)

			_, err := svc.CreateProblem(context.Background(), testUserID, req)
			if !errors.Is(err, common.ErrBadRequest) {
				t.Fatalf("CreateProblem() error = %v, want ErrBadRequest", err)
			}
			if len(repo.problems) != 1 {
				t.Errorf("problems = %d, want only the fixture problem", len(repo.problems))
			}
		})
	}
}

func TestGetProblemStripsInternalsForUsers(t *testing.T) {
	t.Parallel()

	svc, _ := newProblemServiceFixture(t)

	problem, err := svc.GetProblem(context.Background(), "two-sum", model.RoleUser)
	if err != nil {
		t.Fatalf("GetProblem() error = %v", err)
	}

	if problem.SolutionCode != nil || problem.SolutionLanguage != nil {
		t.Error("reference solution leaked to a non-admin caller")
	}
	if len(problem.TestCases) != 1 {
		t.Fatalf("len(TestCases) = %d, want 1 visible case", len(problem.TestCases))
	}
	if problem.TestCases[0].Visibility != model.VisibilityVisible {
		t.Errorf("TestCases[0].Visibility = %v, want Visible", problem.TestCases[0].Visibility)
	}
}

func TestGetProblemAdminSeesEverything(t *testing.T) {
	t.Parallel()

	svc, _ := newProblemServiceFixture(t)

	problem, err := svc.GetProblem(context.Background(), "two-sum", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GetProblem() error = %v", err)
	}

	if problem.SolutionCode == nil {
		t.Error("SolutionCode = nil, want reference solution for admin")
	}
	if len(problem.TestCases) != 2 {
		t.Errorf("len(TestCases) = %d, want 2 (hidden included)", len(problem.TestCases))
	}
}

func TestGetProblemHidesUnpublishedFromUsers(t *testing.T) {
	t.Parallel()

	svc, repo := newProblemServiceFixture(t)
	repo.problems[testProblemID].Status = model.StatusPendingValidation

	if _, err := svc.GetProblem(context.Background(), "two-sum", model.RoleUser); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetProblem() error = %v, want ErrNotFound", err)
	}

	problem, err := svc.GetProblem(context.Background(), "two-sum", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GetProblem() as admin error = %v", err)
	}
	if problem.Status != model.StatusPendingValidation {
		t.Errorf("Status = %v, want PendingValidation", problem.Status)
	}
}
