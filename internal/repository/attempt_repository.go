package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"exam-bank/internal/domain"
	"exam-bank/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

const attemptColumns = `id, exam_id, subject_id, status, question_snapshot, submitted_answers, pass_score, time_limit_minutes, total_questions, correct_count, score, passed, started_at, finished_at, time_spent_seconds, created_at, updated_at`

// GetAttemptByID returns the attempt or nil when no row matches.
func (r *sqlxAttemptRepository) GetAttemptByID(ctx context.Context, id string) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts WHERE id = ?`

	var model models.ExamAttempt
	if err := sqlx.GetContext(ctx, getExecutor(ctx, r.db), &model, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt %s: %w", id, err)
	}
	return toDomainAttempt(&model)
}

func (r *sqlxAttemptRepository) SaveAttempt(ctx context.Context, attempt *domain.Attempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}
	model, err := toModelAttempt(attempt)
	if err != nil {
		return err
	}
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	query := `INSERT INTO exam_attempts (` + attemptColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.ID,
		model.ExamID,
		model.SubjectID,
		model.Status,
		model.QuestionSnapshot,
		model.SubmittedAnswers,
		model.PassScore,
		model.TimeLimitMinutes,
		model.TotalQuestions,
		model.CorrectCount,
		model.Score,
		model.Passed,
		model.StartedAt,
		model.FinishedAt,
		model.TimeSpentSeconds,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

// UpdateAttempt persists the mutable part of an attempt. The snapshot
// is frozen at start time and never rewritten.
func (r *sqlxAttemptRepository) UpdateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt cannot be nil")
	}
	model, err := toModelAttempt(attempt)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now()

	query := `UPDATE exam_attempts
	          SET status = ?, submitted_answers = ?, correct_count = ?, score = ?, passed = ?,
	              finished_at = ?, time_spent_seconds = ?, updated_at = ?
	          WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.Status,
		model.SubmittedAnswers,
		model.CorrectCount,
		model.Score,
		model.Passed,
		model.FinishedAt,
		model.TimeSpentSeconds,
		model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attempt %s: %w", model.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewAttemptNotFoundError(model.ID)
	}
	return nil
}

// CountAttempts counts every attempt a subject has made on an exam,
// regardless of status. Started attempts consume the allowance.
func (r *sqlxAttemptRepository) CountAttempts(ctx context.Context, examID, subjectID string) (int, error) {
	query := `SELECT COUNT(*) FROM exam_attempts WHERE exam_id = ? AND subject_id = ?`

	var count int
	if err := sqlx.GetContext(ctx, getExecutor(ctx, r.db), &count, query, examID, subjectID); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// GetInProgressAttempt returns the subject's open attempt on an exam,
// or nil when there is none.
func (r *sqlxAttemptRepository) GetInProgressAttempt(ctx context.Context, examID, subjectID string) (*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts
	          WHERE exam_id = ? AND subject_id = ? AND status = ?
	          ORDER BY started_at DESC LIMIT 1`

	var model models.ExamAttempt
	if err := sqlx.GetContext(ctx, getExecutor(ctx, r.db), &model, query, examID, subjectID, string(domain.AttemptInProgress)); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get in-progress attempt: %w", err)
	}
	return toDomainAttempt(&model)
}

func (r *sqlxAttemptRepository) ListAttemptsBySubject(ctx context.Context, examID, subjectID string) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts
	          WHERE exam_id = ? AND subject_id = ?
	          ORDER BY started_at DESC`

	var rows []models.ExamAttempt
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, r.db), &rows, query, examID, subjectID); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		attempt, err := toDomainAttempt(&rows[i])
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}

// ListFinishedAttemptsByExam returns every terminal attempt on an exam.
// Regrades re-score these against the current answer keys.
func (r *sqlxAttemptRepository) ListFinishedAttemptsByExam(ctx context.Context, examID string) ([]*domain.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts
	          WHERE exam_id = ? AND status != ?
	          ORDER BY started_at`

	var rows []models.ExamAttempt
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, r.db), &rows, query, examID, string(domain.AttemptInProgress)); err != nil {
		return nil, fmt.Errorf("failed to list finished attempts for exam %s: %w", examID, err)
	}

	attempts := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		attempt, err := toDomainAttempt(&rows[i])
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}
