package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"exam-bank/internal/domain"
	"exam-bank/internal/repository/models"
	"exam-bank/internal/util"
)

// optionPayload is the stored shape of one choice option.
type optionPayload struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// answerKeyPayload is the stored shape of a question's answer key.
// Exactly the fields for the question's kind are populated.
type answerKeyPayload struct {
	CorrectOption string   `json:"correct_option,omitempty"`
	IsTrue        string   `json:"is_true,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
	Result        *float64 `json:"result,omitempty"`
	ExpectedCode  string   `json:"expected_code,omitempty"`
}

// answerPayload is the stored shape of one submitted answer.
type answerPayload struct {
	Kind     string   `json:"kind"`
	Selected []string `json:"selected,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// snapshotQuestion is the stored shape of one frozen attempt question.
type snapshotQuestion struct {
	ID          string           `json:"id"`
	Kind        string           `json:"kind"`
	Prompt      string           `json:"prompt"`
	Options     []optionPayload  `json:"options,omitempty"`
	AnswerKey   answerKeyPayload `json:"answer_key"`
	Explanation string           `json:"explanation,omitempty"`
	Difficulty  string           `json:"difficulty,omitempty"`
	Points      int              `json:"points"`
	Tags        []string         `json:"tags,omitempty"`
	OrderIndex  int              `json:"order_index"`
}

func encodeOptions(options []domain.ChoiceOption) (sql.NullString, error) {
	if len(options) == 0 {
		return sql.NullString{}, nil
	}
	payload := make([]optionPayload, len(options))
	for i, o := range options {
		payload[i] = optionPayload{Key: o.Key, Text: o.Text}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal options: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeOptions(raw sql.NullString) ([]domain.ChoiceOption, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var payload []optionPayload
	if err := json.Unmarshal([]byte(raw.String), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	options := make([]domain.ChoiceOption, len(payload))
	for i, p := range payload {
		options[i] = domain.ChoiceOption{Key: p.Key, Text: p.Text}
	}
	return options, nil
}

func encodeAnswerKey(key domain.AnswerKey) (string, error) {
	var payload answerKeyPayload
	switch k := key.(type) {
	case domain.ChoiceKey:
		payload.CorrectOption = k.Correct
	case domain.TrueFalseKey:
		payload.IsTrue = k.Value
	case domain.ShortAnswerKey:
		payload.Keywords = k.Keywords
		payload.SampleAnswer = k.SampleAnswer
	case domain.NumericKey:
		expected := k.Expected
		payload.Result = &expected
	case domain.ProgrammingKey:
		payload.ExpectedCode = k.ExpectedCode
	default:
		return "", fmt.Errorf("unsupported answer key type %T", key)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal answer key: %w", err)
	}
	return string(raw), nil
}

func decodeAnswerKey(kind domain.Kind, raw string) (domain.AnswerKey, error) {
	var payload answerKeyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answer key: %w", err)
	}
	switch kind {
	case domain.KindChoice:
		return domain.ChoiceKey{Correct: payload.CorrectOption}, nil
	case domain.KindTrueFalse:
		return domain.TrueFalseKey{Value: payload.IsTrue}, nil
	case domain.KindShortAnswer:
		return domain.ShortAnswerKey{Keywords: payload.Keywords, SampleAnswer: payload.SampleAnswer}, nil
	case domain.KindNumeric:
		if payload.Result == nil {
			return nil, fmt.Errorf("numeric answer key is missing its result")
		}
		return domain.NumericKey{Expected: *payload.Result}, nil
	case domain.KindProgramming:
		return domain.ProgrammingKey{ExpectedCode: payload.ExpectedCode}, nil
	default:
		return nil, fmt.Errorf("unsupported question kind %q", kind)
	}
}

func encodeAnswerValue(answer domain.AnswerValue) (answerPayload, error) {
	switch a := answer.(type) {
	case domain.SelectedOptions:
		return answerPayload{Kind: string(domain.KindChoice), Selected: a}, nil
	case domain.TrueFalseAnswer:
		return answerPayload{Kind: string(domain.KindTrueFalse), Value: a.Raw}, nil
	case domain.FreeText:
		return answerPayload{Kind: string(domain.KindShortAnswer), Value: string(a)}, nil
	case domain.Number:
		return answerPayload{Kind: string(domain.KindNumeric), Value: a.Raw}, nil
	case domain.Code:
		return answerPayload{Kind: string(domain.KindProgramming), Value: string(a)}, nil
	default:
		return answerPayload{}, fmt.Errorf("unsupported answer value type %T", answer)
	}
}

func decodeAnswerValue(payload answerPayload) (domain.AnswerValue, error) {
	switch domain.Kind(payload.Kind) {
	case domain.KindChoice:
		return domain.SelectedOptions(payload.Selected), nil
	case domain.KindTrueFalse:
		return domain.TrueFalseAnswer{Raw: payload.Value}, nil
	case domain.KindShortAnswer:
		return domain.FreeText(payload.Value), nil
	case domain.KindNumeric:
		return domain.Number{Raw: payload.Value}, nil
	case domain.KindProgramming:
		return domain.Code(payload.Value), nil
	default:
		return nil, fmt.Errorf("unsupported answer kind %q", payload.Kind)
	}
}

func toModelQuestion(q *domain.Question) (*models.Question, error) {
	if q == nil {
		return nil, nil
	}
	options, err := encodeOptions(q.Options)
	if err != nil {
		return nil, err
	}
	answerKey, err := encodeAnswerKey(q.Key)
	if err != nil {
		return nil, err
	}
	return &models.Question{
		ID:          q.ID,
		BankID:      q.BankID,
		Kind:        string(q.Kind),
		Prompt:      q.Prompt,
		Options:     options,
		AnswerKey:   answerKey,
		Explanation: util.StringToNullString(q.Explanation),
		Difficulty:  string(q.Difficulty),
		Points:      q.Points,
		Tags:        models.StringSlice(q.Tags),
		OrderIndex:  q.OrderIndex,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}, nil
}

func toDomainQuestion(m *models.Question) (*domain.Question, error) {
	if m == nil {
		return nil, nil
	}
	options, err := decodeOptions(m.Options)
	if err != nil {
		return nil, err
	}
	key, err := decodeAnswerKey(domain.Kind(m.Kind), m.AnswerKey)
	if err != nil {
		return nil, err
	}
	return &domain.Question{
		ID:          m.ID,
		BankID:      m.BankID,
		Kind:        domain.Kind(m.Kind),
		Prompt:      m.Prompt,
		Options:     options,
		Key:         key,
		Explanation: m.Explanation.String,
		Difficulty:  domain.Difficulty(m.Difficulty),
		Points:      m.Points,
		Tags:        []string(m.Tags),
		OrderIndex:  m.OrderIndex,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

func toModelExam(e *domain.Exam) *models.Exam {
	if e == nil {
		return nil
	}
	kinds := make(models.StringSlice, len(e.KindFilter))
	for i, k := range e.KindFilter {
		kinds[i] = string(k)
	}
	difficulties := make(models.StringSlice, len(e.DifficultyFilter))
	for i, d := range e.DifficultyFilter {
		difficulties[i] = string(d)
	}
	var startTime, endTime sql.NullTime
	if e.StartTime != nil {
		startTime = util.TimeToNullTime(*e.StartTime)
	}
	if e.EndTime != nil {
		endTime = util.TimeToNullTime(*e.EndTime)
	}
	return &models.Exam{
		ID:               e.ID,
		BankID:           e.BankID,
		Title:            e.Title,
		Description:      util.StringToNullString(e.Description),
		QuestionCount:    e.QuestionCount,
		TimeLimitMinutes: e.TimeLimitMinutes,
		PassScore:        e.PassScore,
		MaxAttempts:      e.MaxAttempts,
		KindFilter:       kinds,
		DifficultyFilter: difficulties,
		RandomizeOrder:   e.RandomizeOrder,
		IsActive:         e.IsActive,
		StartTime:        startTime,
		EndTime:          endTime,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toDomainExam(m *models.Exam) *domain.Exam {
	if m == nil {
		return nil
	}
	kinds := make([]domain.Kind, len(m.KindFilter))
	for i, k := range m.KindFilter {
		kinds[i] = domain.Kind(k)
	}
	difficulties := make([]domain.Difficulty, len(m.DifficultyFilter))
	for i, d := range m.DifficultyFilter {
		difficulties[i] = domain.Difficulty(d)
	}
	var startTime, endTime *time.Time
	if m.StartTime.Valid {
		t := m.StartTime.Time
		startTime = &t
	}
	if m.EndTime.Valid {
		t := m.EndTime.Time
		endTime = &t
	}
	return &domain.Exam{
		ID:               m.ID,
		BankID:           m.BankID,
		Title:            m.Title,
		Description:      m.Description.String,
		QuestionCount:    m.QuestionCount,
		TimeLimitMinutes: m.TimeLimitMinutes,
		PassScore:        m.PassScore,
		MaxAttempts:      m.MaxAttempts,
		KindFilter:       kinds,
		DifficultyFilter: difficulties,
		RandomizeOrder:   m.RandomizeOrder,
		IsActive:         m.IsActive,
		StartTime:        startTime,
		EndTime:          endTime,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func encodeSnapshot(questions []*domain.Question) (string, error) {
	payload := make([]snapshotQuestion, len(questions))
	for i, q := range questions {
		var options []optionPayload
		if len(q.Options) > 0 {
			options = make([]optionPayload, len(q.Options))
			for j, o := range q.Options {
				options[j] = optionPayload{Key: o.Key, Text: o.Text}
			}
		}
		keyRaw, err := encodeAnswerKey(q.Key)
		if err != nil {
			return "", err
		}
		var key answerKeyPayload
		if err := json.Unmarshal([]byte(keyRaw), &key); err != nil {
			return "", fmt.Errorf("failed to re-shape answer key: %w", err)
		}
		payload[i] = snapshotQuestion{
			ID:          q.ID,
			Kind:        string(q.Kind),
			Prompt:      q.Prompt,
			Options:     options,
			AnswerKey:   key,
			Explanation: q.Explanation,
			Difficulty:  string(q.Difficulty),
			Points:      q.Points,
			Tags:        q.Tags,
			OrderIndex:  q.OrderIndex,
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal question snapshot: %w", err)
	}
	return string(raw), nil
}

func decodeSnapshot(raw string) ([]*domain.Question, error) {
	var payload []snapshotQuestion
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question snapshot: %w", err)
	}
	questions := make([]*domain.Question, len(payload))
	for i, p := range payload {
		keyRaw, err := json.Marshal(p.AnswerKey)
		if err != nil {
			return nil, fmt.Errorf("failed to re-shape answer key: %w", err)
		}
		key, err := decodeAnswerKey(domain.Kind(p.Kind), string(keyRaw))
		if err != nil {
			return nil, err
		}
		var options []domain.ChoiceOption
		if len(p.Options) > 0 {
			options = make([]domain.ChoiceOption, len(p.Options))
			for j, o := range p.Options {
				options[j] = domain.ChoiceOption{Key: o.Key, Text: o.Text}
			}
		}
		questions[i] = &domain.Question{
			ID:          p.ID,
			Kind:        domain.Kind(p.Kind),
			Prompt:      p.Prompt,
			Options:     options,
			Key:         key,
			Explanation: p.Explanation,
			Difficulty:  domain.Difficulty(p.Difficulty),
			Points:      p.Points,
			Tags:        p.Tags,
			OrderIndex:  p.OrderIndex,
		}
	}
	return questions, nil
}

func encodeAnswers(answers map[string]domain.AnswerValue) (string, error) {
	payload := make(map[string]answerPayload, len(answers))
	for questionID, answer := range answers {
		p, err := encodeAnswerValue(answer)
		if err != nil {
			return "", err
		}
		payload[questionID] = p
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submitted answers: %w", err)
	}
	return string(raw), nil
}

func decodeAnswers(raw string) (map[string]domain.AnswerValue, error) {
	var payload map[string]answerPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal submitted answers: %w", err)
	}
	answers := make(map[string]domain.AnswerValue, len(payload))
	for questionID, p := range payload {
		value, err := decodeAnswerValue(p)
		if err != nil {
			return nil, err
		}
		answers[questionID] = value
	}
	return answers, nil
}

func toModelAttempt(a *domain.Attempt) (*models.ExamAttempt, error) {
	if a == nil {
		return nil, nil
	}
	snapshot, err := encodeSnapshot(a.Snapshot)
	if err != nil {
		return nil, err
	}
	answers, err := encodeAnswers(a.Answers)
	if err != nil {
		return nil, err
	}
	var finishedAt sql.NullTime
	if a.FinishedAt != nil {
		finishedAt = util.TimeToNullTime(*a.FinishedAt)
	}
	return &models.ExamAttempt{
		ID:               a.ID,
		ExamID:           a.ExamID,
		SubjectID:        a.SubjectID,
		Status:           string(a.Status),
		QuestionSnapshot: snapshot,
		SubmittedAnswers: answers,
		PassScore:        a.PassScore,
		TimeLimitMinutes: int(a.TimeLimit / time.Minute),
		TotalQuestions:   a.TotalQuestions,
		CorrectCount:     a.CorrectCount,
		Score:            a.Score,
		Passed:           a.Passed,
		StartedAt:        a.StartedAt,
		FinishedAt:       finishedAt,
		TimeSpentSeconds: a.TimeSpentSeconds,
	}, nil
}

func toDomainAttempt(m *models.ExamAttempt) (*domain.Attempt, error) {
	if m == nil {
		return nil, nil
	}
	snapshot, err := decodeSnapshot(m.QuestionSnapshot)
	if err != nil {
		return nil, err
	}
	answers, err := decodeAnswers(m.SubmittedAnswers)
	if err != nil {
		return nil, err
	}
	var finishedAt *time.Time
	if m.FinishedAt.Valid {
		t := m.FinishedAt.Time
		finishedAt = &t
	}
	return &domain.Attempt{
		ID:               m.ID,
		ExamID:           m.ExamID,
		SubjectID:        m.SubjectID,
		Status:           domain.AttemptStatus(m.Status),
		Snapshot:         snapshot,
		Answers:          answers,
		PassScore:        m.PassScore,
		TimeLimit:        time.Duration(m.TimeLimitMinutes) * time.Minute,
		StartedAt:        m.StartedAt,
		FinishedAt:       finishedAt,
		TotalQuestions:   m.TotalQuestions,
		CorrectCount:     m.CorrectCount,
		Score:            m.Score,
		Passed:           m.Passed,
		TimeSpentSeconds: m.TimeSpentSeconds,
	}, nil
}
