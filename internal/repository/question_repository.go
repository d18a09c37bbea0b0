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

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

const questionColumns = `id, bank_id, kind, prompt, options, answer_key, explanation, difficulty, points, tags, order_index, created_at, updated_at, deleted_at`

// GetQuestionByID returns the question or nil when no live row matches.
func (r *sqlxQuestionRepository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ? AND deleted_at IS NULL`

	var model models.Question
	if err := sqlx.GetContext(ctx, getExecutor(ctx, r.db), &model, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return toDomainQuestion(&model)
}

// GetQuestionsByBank returns every live question of a bank in order_index order.
func (r *sqlxQuestionRepository) GetQuestionsByBank(ctx context.Context, bankID string) ([]*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions
	          WHERE bank_id = ? AND deleted_at IS NULL
	          ORDER BY order_index, id`

	var rows []models.Question
	if err := sqlx.SelectContext(ctx, getExecutor(ctx, r.db), &rows, query, bankID); err != nil {
		return nil, fmt.Errorf("failed to list questions for bank %s: %w", bankID, err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		q, err := toDomainQuestion(&rows[i])
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *sqlxQuestionRepository) SaveQuestion(ctx context.Context, question *domain.Question) error {
	if question == nil {
		return fmt.Errorf("question cannot be nil")
	}
	model, err := toModelQuestion(question)
	if err != nil {
		return err
	}
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	query := `INSERT INTO questions (` + questionColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.ID,
		model.BankID,
		model.Kind,
		model.Prompt,
		model.Options,
		model.AnswerKey,
		model.Explanation,
		model.Difficulty,
		model.Points,
		model.Tags,
		model.OrderIndex,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	return nil
}

func (r *sqlxQuestionRepository) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	if question == nil {
		return fmt.Errorf("question cannot be nil")
	}
	model, err := toModelQuestion(question)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now()

	query := `UPDATE questions
	          SET kind = ?, prompt = ?, options = ?, answer_key = ?, explanation = ?,
	              difficulty = ?, points = ?, tags = ?, order_index = ?, updated_at = ?
	          WHERE id = ? AND deleted_at IS NULL`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		model.Kind,
		model.Prompt,
		model.Options,
		model.AnswerKey,
		model.Explanation,
		model.Difficulty,
		model.Points,
		model.Tags,
		model.OrderIndex,
		model.UpdatedAt,
		model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question %s: %w", model.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewQuestionNotFoundError(model.ID)
	}
	return nil
}

// DeleteQuestion soft-deletes; the row stays for frozen attempt snapshots.
func (r *sqlxQuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	query := `UPDATE questions SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

	now := time.Now()
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete question %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NewQuestionNotFoundError(id)
	}
	return nil
}
