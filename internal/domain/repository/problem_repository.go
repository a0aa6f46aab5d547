package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// ProblemRepository is the persistence boundary for problems and doubles as
// the test case source: GetTestCases returns cases in a stable order (visible
// subset first, then hidden, each by sort order) across calls for the same
// problem version.
type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	UpdateProblemStatus(ctx context.Context, problemID string, status model.ProblemStatus) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, status model.ProblemStatus) ([]model.Problem, int, error)

	AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, cases []model.TestCase) error
	GetTestCases(ctx context.Context, problemID string, visibility model.TestCaseVisibility) ([]model.TestCase, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, description, difficulty, status, solution_code, solution_language, runtime_limit_ms, memory_limit_kb, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Status, p.SolutionCode, p.SolutionLanguage, p.RuntimeLimitMs, p.MemoryLimitKb, p.CreatedByID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Description, p.Difficulty, p.Status, p.SolutionCode, p.SolutionLanguage, p.RuntimeLimitMs, p.MemoryLimitKb, p.CreatedByID)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblemStatus(ctx context.Context, problemID string, status model.ProblemStatus) error {
	query := `UPDATE problems SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, problemID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblemStatus: %w", err)
	}
	return nil
}

const problemColumns = `p.id, p.title, p.slug, p.description, p.difficulty, p.status,
       p.solution_code, p.solution_language, p.runtime_limit_ms, p.memory_limit_kb,
       p.created_by, p.created_at, p.updated_at`

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.id = $1`
	return r.scanProblem(r.db.QueryRowContext(ctx, query, id))
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.slug = $1`
	return r.scanProblem(r.db.QueryRowContext(ctx, query, slug))
}

func (r *pgProblemRepository) scanProblem(row *sql.Row) (*model.Problem, error) {
	problem := &model.Problem{}
	err := row.Scan(
		&problem.ID, &problem.Title, &problem.Slug, &problem.Description, &problem.Difficulty, &problem.Status,
		&problem.SolutionCode, &problem.SolutionLanguage, &problem.RuntimeLimitMs, &problem.MemoryLimitKb,
		&problem.CreatedByID, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.scanProblem: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, status model.ProblemStatus) ([]model.Problem, int, error) {
	conditions := " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	if difficulty != "" {
		conditions += fmt.Sprintf(" AND p.difficulty = $%d", argID)
		args = append(args, difficulty)
		argID++
	}
	if status != "" {
		conditions += fmt.Sprintf(" AND p.status = $%d", argID)
		args = append(args, status)
		argID++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM problems p` + conditions
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems count: %w", err)
	}

	query := `SELECT p.id, p.title, p.slug, p.description, p.difficulty, p.status,
	                 p.runtime_limit_ms, p.memory_limit_kb, p.created_at, p.updated_at
	          FROM problems p` + conditions +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		var p model.Problem
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Slug, &p.Description, &p.Difficulty, &p.Status,
			&p.RuntimeLimitMs, &p.MemoryLimitKb, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, total, rows.Err()
}

func (r *pgProblemRepository) AddTestCases(ctx context.Context, tx *sql.Tx, problemID string, cases []model.TestCase) error {
	query := `INSERT INTO test_cases (id, problem_id, input, expected_output, explanation, visibility, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, tc := range cases {
		var err error
		if tx != nil {
			_, err = tx.ExecContext(ctx, query, tc.ID, problemID, tc.Input, tc.ExpectedOutput, tc.Explanation, tc.Visibility, tc.SortOrder)
		} else {
			_, err = r.db.ExecContext(ctx, query, tc.ID, problemID, tc.Input, tc.ExpectedOutput, tc.Explanation, tc.Visibility, tc.SortOrder)
		}
		if err != nil {
			return fmt.Errorf("pgProblemRepository.AddTestCases: %w", err)
		}
	}
	return nil
}

func (r *pgProblemRepository) GetTestCases(ctx context.Context, problemID string, visibility model.TestCaseVisibility) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input, expected_output, explanation, visibility, sort_order, created_at
	          FROM test_cases WHERE problem_id = $1`
	args := []interface{}{problemID}
	if visibility != model.VisibilityAll {
		query += ` AND visibility = $2`
		args = append(args, visibility)
	}
	// Visible cases come first so the overall case index the user sees on
	// "submit" lines up with the examples shown on "run".
	query += ` ORDER BY CASE WHEN visibility = 'Visible' THEN 0 ELSE 1 END, sort_order, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCases: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.ExpectedOutput, &tc.Explanation, &tc.Visibility, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetTestCases scan: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}
