package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"judgeflow/internal/common"
	"judgeflow/internal/domain/model"
)

// SubmissionRepository owns the submission lifecycle. Status only moves
// forward (Pending -> Running -> Finished); the guarded UPDATEs below are what
// enforce that at the persistence layer.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)

	// MarkRunning transitions Pending -> Running; a no-op for any other state.
	MarkRunning(ctx context.Context, id string) error

	// Finish is the only transition into Finished and is idempotent: the
	// second call with the same id changes nothing.
	Finish(ctx context.Context, id string, result model.SubmissionResult) error

	ListForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error)

	// MarkProblemSolved upserts the solved-link keyed on (user, problem);
	// repeated accepted submissions leave exactly one row.
	MarkProblemSolved(ctx context.Context, userID, problemID, submissionID string) error
	CountSolvedByUser(ctx context.Context, userID string) (int, error)
	GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, language, code, mode, status, verdict, passed_count, total_count, runtime_ms, memory_kb)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.ProblemID, sub.Language, sub.Code, sub.Mode,
		sub.Status, sub.Verdict, sub.PassedCount, sub.TotalCount, sub.RuntimeMs, sub.MemoryKb,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, user_id, problem_id, language, code, mode, status, verdict,
	                 passed_count, total_count, runtime_ms, memory_kb, created_at, finished_at
	          FROM submissions WHERE id = $1`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language, &sub.Code, &sub.Mode,
		&sub.Status, &sub.Verdict, &sub.PassedCount, &sub.TotalCount,
		&sub.RuntimeMs, &sub.MemoryKb, &sub.CreatedAt, &sub.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) MarkRunning(ctx context.Context, id string) error {
	query := `UPDATE submissions SET status = $1 WHERE id = $2 AND status = $3`
	_, err := r.db.ExecContext(ctx, query, model.StatusRunning, id, model.StatusPending)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.MarkRunning: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Finish(ctx context.Context, id string, result model.SubmissionResult) error {
	// The status guard makes Finished terminal: a duplicate completion
	// signal matches zero rows and mutates nothing.
	query := `UPDATE submissions
	          SET status = $1, verdict = $2, passed_count = $3, total_count = $4,
	              runtime_ms = $5, memory_kb = $6, finished_at = CURRENT_TIMESTAMP
	          WHERE id = $7 AND status <> $1`
	_, err := r.db.ExecContext(ctx, query,
		model.StatusFinished, result.Verdict, result.PassedCount, result.TotalCount,
		result.RuntimeMs, result.MemoryKb, id,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Finish: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND problem_id = $2 AND mode = $3`
	if err := r.db.QueryRowContext(ctx, countQuery, userID, problemID, model.ModeSubmit).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem count: %w", err)
	}

	query := `SELECT id, user_id, problem_id, language, code, mode, status, verdict,
	                 passed_count, total_count, runtime_ms, memory_kb, created_at, finished_at
	          FROM submissions
	          WHERE user_id = $1 AND problem_id = $2 AND mode = $3
	          ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, query, userID, problemID, model.ModeSubmit, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language, &sub.Code, &sub.Mode,
			&sub.Status, &sub.Verdict, &sub.PassedCount, &sub.TotalCount,
			&sub.RuntimeMs, &sub.MemoryKb, &sub.CreatedAt, &sub.FinishedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgSubmissionRepository.ListForUserProblem scan: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, total, rows.Err()
}

func (r *pgSubmissionRepository) MarkProblemSolved(ctx context.Context, userID, problemID, submissionID string) error {
	query := `INSERT INTO solved_problems (user_id, problem_id, submission_id, solved_at)
	          VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id, problem_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID, problemID, submissionID)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.MarkProblemSolved: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) CountSolvedByUser(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM solved_problems WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.CountSolvedByUser: %w", err)
	}
	return count, nil
}

func (r *pgSubmissionRepository) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT u.id, u.username, COUNT(sp.problem_id) AS solved
	          FROM users u
	          JOIN solved_problems sp ON sp.user_id = u.id
	          GROUP BY u.id, u.username
	          ORDER BY solved DESC, u.username ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.ProblemsSolved); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetLeaderboard scan: %w", err)
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
