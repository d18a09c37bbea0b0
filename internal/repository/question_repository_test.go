package repository

import (
	"context"
	"testing"
	"time"

	"exam-bank/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for repository testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func questionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "bank_id", "kind", "prompt", "options", "answer_key", "explanation",
		"difficulty", "points", "tags", "order_index", "created_at", "updated_at", "deleted_at",
	})
}

func TestGetQuestionByID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	now := time.Now()
	rows := questionRows().AddRow(
		"q1", "bank-1", "choice", "pick one",
		`[{"key":"A","text":"first"},{"key":"B","text":"second"}]`,
		`{"correct_option":"A"}`, nil,
		"easy", 1, `["intro"]`, 0, now, now, nil,
	)
	mock.ExpectQuery(`SELECT (.+) FROM questions WHERE id = \?`).
		WithArgs("q1").
		WillReturnRows(rows)

	question, err := repo.GetQuestionByID(context.Background(), "q1")
	require.NoError(t, err)
	require.NotNil(t, question)
	assert.Equal(t, domain.KindChoice, question.Kind)
	assert.Equal(t, domain.ChoiceKey{Correct: "A"}, question.Key)
	assert.Equal(t, []string{"intro"}, question.Tags)
	assert.Len(t, question.Options, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionByIDNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM questions WHERE id = \?`).
		WithArgs("missing").
		WillReturnRows(questionRows())

	question, err := repo.GetQuestionByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, question)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestionsByBank(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	now := time.Now()
	rows := questionRows().
		AddRow("q1", "bank-1", "true_false", "is it", nil, `{"is_true":"true"}`, nil,
			"easy", 1, "[]", 0, now, now, nil).
		AddRow("q2", "bank-1", "numeric", "how many", nil, `{"result":42}`, "forty-two",
			"medium", 2, "[]", 1, now, now, nil)
	mock.ExpectQuery(`SELECT (.+) FROM questions\s+WHERE bank_id = \?`).
		WithArgs("bank-1").
		WillReturnRows(rows)

	questions, err := repo.GetQuestionsByBank(context.Background(), "bank-1")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, domain.TrueFalseKey{Value: "true"}, questions[0].Key)
	assert.Equal(t, domain.NumericKey{Expected: 42}, questions[1].Key)
	assert.Equal(t, "forty-two", questions[1].Explanation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveQuestion(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	question := domain.NewQuestion("bank-1", domain.KindProgramming, "write it",
		domain.ProgrammingKey{ExpectedCode: "SELECT 1"})
	question.ID = "q9"

	mock.ExpectExec(`INSERT INTO questions`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveQuestion(context.Background(), question)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateQuestionNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	question := domain.NewQuestion("bank-1", domain.KindNumeric, "how many",
		domain.NumericKey{Expected: 3})
	question.ID = "gone"

	mock.ExpectExec(`UPDATE questions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateQuestion(context.Background(), question)
	domainErr, ok := err.(*domain.DomainError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeQuestionNotFound, domainErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQuestionSoftDeletes(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)

	mock.ExpectExec(`UPDATE questions SET deleted_at = \?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.DeleteQuestion(context.Background(), "q1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
