package dto

import (
	"time"

	"exam-bank/internal/domain"
)

// ExamRequest is the create/update payload for an exam.
type ExamRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	QuestionCount    int        `json:"question_count,omitempty"`
	TimeLimitMinutes int        `json:"time_limit_minutes,omitempty"`
	PassScore        *float64   `json:"pass_score,omitempty"`
	MaxAttempts      int        `json:"max_attempts,omitempty"`
	KindFilter       []string   `json:"kind_filter,omitempty"`
	DifficultyFilter []string   `json:"difficulty_filter,omitempty"`
	RandomizeOrder   *bool      `json:"randomize_order,omitempty"`
	IsActive         *bool      `json:"is_active,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
}

// ToDomain builds an unvalidated domain exam for the given bank.
// Omitted optional fields keep the domain defaults.
func (r ExamRequest) ToDomain(bankID string) (*domain.Exam, error) {
	exam := domain.NewExam(bankID, r.Title)
	exam.Description = r.Description
	if r.QuestionCount != 0 {
		exam.QuestionCount = r.QuestionCount
	}
	exam.TimeLimitMinutes = r.TimeLimitMinutes
	if r.PassScore != nil {
		exam.PassScore = *r.PassScore
	}
	if r.MaxAttempts != 0 {
		exam.MaxAttempts = r.MaxAttempts
	}
	if r.RandomizeOrder != nil {
		exam.RandomizeOrder = *r.RandomizeOrder
	}
	if r.IsActive != nil {
		exam.IsActive = *r.IsActive
	}
	exam.StartTime = r.StartTime
	exam.EndTime = r.EndTime

	for _, k := range r.KindFilter {
		kind, err := domain.ParseKind(k)
		if err != nil {
			return nil, domain.ValidationErrors{domain.NewInvalidFormatError("kind_filter", k)}
		}
		exam.KindFilter = append(exam.KindFilter, kind)
	}
	for _, d := range r.DifficultyFilter {
		difficulty, err := domain.ParseDifficulty(d)
		if err != nil {
			return nil, domain.ValidationErrors{domain.NewInvalidFormatError("difficulty_filter", d)}
		}
		exam.DifficultyFilter = append(exam.DifficultyFilter, difficulty)
	}
	return exam, nil
}

// ExamResponse represents an exam in the API response.
type ExamResponse struct {
	ID               string     `json:"id"`
	BankID           string     `json:"bank_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	QuestionCount    int        `json:"question_count"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	PassScore        float64    `json:"pass_score"`
	MaxAttempts      int        `json:"max_attempts"`
	KindFilter       []string   `json:"kind_filter,omitempty"`
	DifficultyFilter []string   `json:"difficulty_filter,omitempty"`
	RandomizeOrder   bool       `json:"randomize_order"`
	IsActive         bool       `json:"is_active"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewExamResponse maps a domain exam to its API shape.
func NewExamResponse(e *domain.Exam) ExamResponse {
	kinds := make([]string, len(e.KindFilter))
	for i, k := range e.KindFilter {
		kinds[i] = string(k)
	}
	difficulties := make([]string, len(e.DifficultyFilter))
	for i, d := range e.DifficultyFilter {
		difficulties[i] = string(d)
	}
	return ExamResponse{
		ID:               e.ID,
		BankID:           e.BankID,
		Title:            e.Title,
		Description:      e.Description,
		QuestionCount:    e.QuestionCount,
		TimeLimitMinutes: e.TimeLimitMinutes,
		PassScore:        e.PassScore,
		MaxAttempts:      e.MaxAttempts,
		KindFilter:       kinds,
		DifficultyFilter: difficulties,
		RandomizeOrder:   e.RandomizeOrder,
		IsActive:         e.IsActive,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// StartAttemptResponse is returned when a subject opens an attempt.
// Questions carry no answer keys or explanations.
type StartAttemptResponse struct {
	AttemptID string             `json:"attempt_id"`
	ExamID    string             `json:"exam_id"`
	Status    string             `json:"status"`
	StartedAt time.Time          `json:"started_at"`
	Deadline  *time.Time         `json:"deadline,omitempty"`
	Questions []QuestionResponse `json:"questions"`
}

// RecordAnswerRequest saves one answer on an open attempt.
type RecordAnswerRequest struct {
	QuestionID string      `json:"question_id"`
	Answer     AnswerInput `json:"answer"`
}

// QuestionResultResponse is the per-question outcome of a finished attempt.
type QuestionResultResponse struct {
	QuestionID   string `json:"question_id"`
	IsCorrect    bool   `json:"is_correct"`
	ScoreAwarded int    `json:"score_awarded"`
	MatchedRule  string `json:"matched_rule"`
	Explanation  string `json:"explanation,omitempty"`
}

// AttemptResultResponse is the aggregate outcome of a finished attempt.
type AttemptResultResponse struct {
	AttemptID        string                   `json:"attempt_id"`
	ExamID           string                   `json:"exam_id"`
	Status           string                   `json:"status"`
	Score            float64                  `json:"score"`
	Passed           bool                     `json:"passed"`
	CorrectCount     int                      `json:"correct_count"`
	TotalQuestions   int                      `json:"total_questions"`
	TimeSpentSeconds int                      `json:"time_spent_seconds"`
	FinishedAt       *time.Time               `json:"finished_at,omitempty"`
	Questions        []QuestionResultResponse `json:"questions"`
}

// AttemptSummaryResponse is one row of an attempt listing.
type AttemptSummaryResponse struct {
	AttemptID        string     `json:"attempt_id"`
	ExamID           string     `json:"exam_id"`
	Status           string     `json:"status"`
	Score            float64    `json:"score"`
	Passed           bool       `json:"passed"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

// NewAttemptSummaryResponse maps a domain attempt to its listing row.
func NewAttemptSummaryResponse(a *domain.Attempt) AttemptSummaryResponse {
	return AttemptSummaryResponse{
		AttemptID:        a.ID,
		ExamID:           a.ExamID,
		Status:           string(a.Status),
		Score:            a.Score,
		Passed:           a.Passed,
		StartedAt:        a.StartedAt,
		FinishedAt:       a.FinishedAt,
		TimeSpentSeconds: a.TimeSpentSeconds,
	}
}

// RegradeReport summarizes a finished regrade run.
type RegradeReport struct {
	ExamID           string `json:"exam_id"`
	AttemptsExamined int    `json:"attempts_examined"`
	AttemptsChanged  int    `json:"attempts_changed"`
}
