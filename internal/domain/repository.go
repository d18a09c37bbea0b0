package domain

import "context"

// QuestionRepository defines the interface for question persistence.
type QuestionRepository interface {
	// GetQuestionByID retrieves a question by its ID.
	GetQuestionByID(ctx context.Context, id string) (*Question, error)

	// GetQuestionsByBank returns every question of a bank, in order_index
	// order.
	GetQuestionsByBank(ctx context.Context, bankID string) ([]*Question, error)

	// SaveQuestion persists a new question.
	SaveQuestion(ctx context.Context, q *Question) error

	// UpdateQuestion updates an existing question.
	UpdateQuestion(ctx context.Context, q *Question) error

	// DeleteQuestion soft-deletes a question. Attempts keep their own
	// frozen copies, so deletion never touches attempt snapshots.
	DeleteQuestion(ctx context.Context, id string) error
}

// ExamRepository defines the interface for exam persistence.
type ExamRepository interface {
	// GetExamByID retrieves an exam by its ID.
	GetExamByID(ctx context.Context, id string) (*Exam, error)

	// ListExamsByBank returns every exam configured over a bank.
	ListExamsByBank(ctx context.Context, bankID string) ([]*Exam, error)

	// SaveExam persists a new exam.
	SaveExam(ctx context.Context, e *Exam) error

	// UpdateExam updates an existing exam.
	UpdateExam(ctx context.Context, e *Exam) error
}

// TransactionManager scopes a group of repository writes to one
// database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AttemptRepository defines the interface for attempt persistence.
type AttemptRepository interface {
	// GetAttemptByID retrieves an attempt by its ID.
	GetAttemptByID(ctx context.Context, id string) (*Attempt, error)

	// SaveAttempt persists a new attempt.
	SaveAttempt(ctx context.Context, a *Attempt) error

	// UpdateAttempt updates an attempt's answers and status.
	UpdateAttempt(ctx context.Context, a *Attempt) error

	// CountAttempts returns how many attempts a subject has made on an
	// exam, regardless of status.
	CountAttempts(ctx context.Context, examID, subjectID string) (int, error)

	// GetInProgressAttempt returns the subject's in-progress attempt on
	// an exam, or nil when there is none.
	GetInProgressAttempt(ctx context.Context, examID, subjectID string) (*Attempt, error)

	// ListAttemptsBySubject returns a subject's attempts on an exam,
	// newest first.
	ListAttemptsBySubject(ctx context.Context, examID, subjectID string) ([]*Attempt, error)

	// ListFinishedAttemptsByExam returns every finalized attempt of an
	// exam, for batch re-grading.
	ListFinishedAttemptsByExam(ctx context.Context, examID string) ([]*Attempt, error)
}
