package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON text column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte

	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 {
		*s = StringSlice{}
		return nil
	}
	if string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(bytesToParse, s)
}

// Question is the questions table row. Options and the answer key are
// stored as JSON text, shaped per question kind.
type Question struct {
	ID          string         `db:"id"`
	BankID      string         `db:"bank_id"`
	Kind        string         `db:"kind"`
	Prompt      string         `db:"prompt"`
	Options     sql.NullString `db:"options"`
	AnswerKey   string         `db:"answer_key"`
	Explanation sql.NullString `db:"explanation"`
	Difficulty  string         `db:"difficulty"`
	Points      int            `db:"points"`
	Tags        StringSlice    `db:"tags"`
	OrderIndex  int            `db:"order_index"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Exam is the exams table row.
type Exam struct {
	ID               string         `db:"id"`
	BankID           string         `db:"bank_id"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	QuestionCount    int            `db:"question_count"`
	TimeLimitMinutes int            `db:"time_limit_minutes"`
	PassScore        float64        `db:"pass_score"`
	MaxAttempts      int            `db:"max_attempts"`
	KindFilter       StringSlice    `db:"kind_filter"`
	DifficultyFilter StringSlice    `db:"difficulty_filter"`
	RandomizeOrder   bool           `db:"randomize_order"`
	IsActive         bool           `db:"is_active"`
	StartTime        sql.NullTime   `db:"start_time"`
	EndTime          sql.NullTime   `db:"end_time"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        sql.NullTime   `db:"deleted_at"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamAttempt is the exam_attempts table row. The question snapshot and
// the submitted answers are frozen as JSON text at write time.
type ExamAttempt struct {
	ID               string       `db:"id"`
	ExamID           string       `db:"exam_id"`
	SubjectID        string       `db:"subject_id"`
	Status           string       `db:"status"`
	QuestionSnapshot string       `db:"question_snapshot"`
	SubmittedAnswers string       `db:"submitted_answers"`
	PassScore        float64      `db:"pass_score"`
	TimeLimitMinutes int          `db:"time_limit_minutes"`
	TotalQuestions   int          `db:"total_questions"`
	CorrectCount     int          `db:"correct_count"`
	Score            float64      `db:"score"`
	Passed           bool         `db:"passed"`
	StartedAt        time.Time    `db:"started_at"`
	FinishedAt       sql.NullTime `db:"finished_at"`
	TimeSpentSeconds int          `db:"time_spent_seconds"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}
