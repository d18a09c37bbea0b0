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

// sqlxExamRepository implements domain.ExamRepository using sqlx.
type sqlxExamRepository struct {
	db *sqlx.DB
}

// NewSQLXExamRepository creates a new instance of sqlxExamRepository.
func NewSQLXExamRepository(db *sqlx.DB) domain.ExamRepository {
	return &sqlxExamRepository{db: db}
}

const examColumns = `id, bank_id, title, description, question_count, time_limit_minutes, pass_score, max_attempts, kind_filter, difficulty_filter, randomize_order, is_active, start_time, end_time, created_at, updated_at, deleted_at`

// GetExamByID returns the exam or nil when no live row matches.
func (r *sqlxExamRepository) GetExamByID(ctx context.Context, id string) (*domain.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = ? AND deleted_at IS NULL`

	var model models.Exam
	if err := sqlx.GetContext(ctx, getExecutor(ctx, r.db), &model, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam %s: %w", id, err)
	}
	return toDomainExam(&model), nil
}

func (r *sqlxExamRepository) ListExamsByBank(ctx context.Context, bankID string) ([]*domain.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams
	          WHERE bank_id = ? AND deleted_at IS NULL
	          ORDER BY created_at DESC`

	var rows []models.Exam
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, r.db), &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("failed to list exams for bank %s: %w", bankID, err)
	}

	exams := make([]*domain.Exam, 0, len(rows))
	for i := range rows {
		exams = append(exams, toDomainExam(&rows[i]))
	}
	return exams, nil
}

func (r *sqlxExamRepository) SaveExam(ctx context.Context, exam *domain.Exam) error {
	if exam == nil {
		return fmt.Errorf("exam cannot be nil")
	}
	model := toModelExam(exam)
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	query := `INSERT INTO exams (` + examColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.ID,
		model.BankID,
		model.Title,
		model.Description,
		model.QuestionCount,
		model.TimeLimitMinutes,
		model.PassScore,
		model.MaxAttempts,
		model.KindFilter,
		model.DifficultyFilter,
		model.RandomizeOrder,
		model.IsActive,
		model.StartTime,
		model.EndTime,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	return nil
}

func (r *sqlxExamRepository) UpdateExam(ctx context.Context, exam *domain.Exam) error {
	if exam == nil {
		return fmt.Errorf("exam cannot be nil")
	}
	model := toModelExam(exam)
	model.UpdatedAt = time.Now()

	query := `UPDATE exams
	          SET title = ?, description = ?, question_count = ?, time_limit_minutes = ?,
	              pass_score = ?, max_attempts = ?, kind_filter = ?, difficulty_filter = ?,
	              randomize_order = ?, is_active = ?, start_time = ?, end_time = ?, updated_at = ?
	          WHERE id = ? AND deleted_at IS NULL`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.Title,
		model.Description,
		model.QuestionCount,
		model.TimeLimitMinutes,
		model.PassScore,
		model.MaxAttempts,
		model.KindFilter,
		model.DifficultyFilter,
		model.RandomizeOrder,
		model.IsActive,
		model.StartTime,
		model.EndTime,
		model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update exam %s: %w", model.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewExamNotFoundError(model.ID)
	}
	return nil
}
