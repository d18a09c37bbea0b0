package domain

import (
	"strings"
	"time"
)

// Exam validation bounds.
const (
	MinQuestionCount = 1
	MaxQuestionCount = 100
	MinTimeLimit     = 1
	MaxTimeLimit     = 480
	MinPassScore     = 0.0
	MaxPassScore     = 100.0
	MinMaxAttempts   = 1
	MaxMaxAttempts   = 10
	MaxTitleLength   = 200
)

// Exam is the static configuration a timed assessment is built from. The
// selector consumes the filters and question count; attempts consume the
// pass score and time limit.
type Exam struct {
	ID               string
	BankID           string
	Title            string
	Description      string
	QuestionCount    int
	TimeLimitMinutes int // 0 means no limit
	PassScore        float64
	MaxAttempts      int
	KindFilter       []Kind
	DifficultyFilter []Difficulty
	RandomizeOrder   bool
	IsActive         bool
	StartTime        *time.Time
	EndTime          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewExam creates an exam with the defaults the authoring surface uses.
func NewExam(bankID, title string) *Exam {
	now := time.Now()
	return &Exam{
		BankID:         bankID,
		Title:          title,
		QuestionCount:  10,
		PassScore:      60.0,
		MaxAttempts:    1,
		RandomizeOrder: true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks the exam configuration ranges.
func (e *Exam) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, NewMissingFieldError("title"))
	} else if len(e.Title) > MaxTitleLength {
		errs = append(errs, NewOutOfRangeError("title", len(e.Title), 1, MaxTitleLength))
	}
	if e.BankID == "" {
		errs = append(errs, NewMissingFieldError("bank_id"))
	}
	if e.QuestionCount < MinQuestionCount || e.QuestionCount > MaxQuestionCount {
		errs = append(errs, NewOutOfRangeError("question_count", e.QuestionCount, MinQuestionCount, MaxQuestionCount))
	}
	if e.TimeLimitMinutes != 0 && (e.TimeLimitMinutes < MinTimeLimit || e.TimeLimitMinutes > MaxTimeLimit) {
		errs = append(errs, NewOutOfRangeError("time_limit_minutes", e.TimeLimitMinutes, MinTimeLimit, MaxTimeLimit))
	}
	if e.PassScore < MinPassScore || e.PassScore > MaxPassScore {
		errs = append(errs, NewOutOfRangeError("pass_score", e.PassScore, MinPassScore, MaxPassScore))
	}
	if e.MaxAttempts < MinMaxAttempts || e.MaxAttempts > MaxMaxAttempts {
		errs = append(errs, NewOutOfRangeError("max_attempts", e.MaxAttempts, MinMaxAttempts, MaxMaxAttempts))
	}
	if e.StartTime != nil && e.EndTime != nil && e.EndTime.Before(*e.StartTime) {
		errs = append(errs, NewValidationError("end_time", "must be after start_time"))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CanStart checks the start preconditions for a subject who has already
// used attemptsUsed attempts: the exam must be active, now must lie inside
// the active window, and max attempts must not be exhausted.
func (e *Exam) CanStart(attemptsUsed int, now time.Time) error {
	if err := e.windowContains(now); err != nil {
		return err
	}
	if attemptsUsed >= e.MaxAttempts {
		return NewAttemptsExhaustedError(e.MaxAttempts)
	}
	return nil
}

func (e *Exam) windowContains(now time.Time) error {
	if !e.IsActive {
		return NewOutsideActiveWindowError("Exam is not active")
	}
	if e.StartTime != nil && now.Before(*e.StartTime) {
		return NewOutsideActiveWindowError("Exam has not started yet")
	}
	if e.EndTime != nil && now.After(*e.EndTime) {
		return NewOutsideActiveWindowError("Exam has already ended")
	}
	return nil
}

// TimeLimit returns the time limit as a duration, or false when unlimited.
func (e *Exam) TimeLimit() (time.Duration, bool) {
	if e.TimeLimitMinutes <= 0 {
		return 0, false
	}
	return time.Duration(e.TimeLimitMinutes) * time.Minute, true
}
