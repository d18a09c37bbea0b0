package repository

import (
	"testing"
	"time"

	"exam-bank/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerKeyRoundTrip(t *testing.T) {
	keys := []domain.AnswerKey{
		domain.ChoiceKey{Correct: "ACD"},
		domain.TrueFalseKey{Value: "true"},
		domain.ShortAnswerKey{Keywords: []string{"index", "btree"}, SampleAnswer: "an index speeds up lookups"},
		domain.NumericKey{Expected: 42.5},
		domain.ProgrammingKey{ExpectedCode: "SELECT 1"},
	}
	for _, key := range keys {
		raw, err := encodeAnswerKey(key)
		require.NoError(t, err)

		decoded, err := decodeAnswerKey(key.Kind(), raw)
		require.NoError(t, err)
		assert.Equal(t, key, decoded)
	}
}

func TestDecodeAnswerKeyMissingNumericResult(t *testing.T) {
	_, err := decodeAnswerKey(domain.KindNumeric, `{}`)
	assert.Error(t, err)
}

func TestAnswerValueRoundTrip(t *testing.T) {
	values := []domain.AnswerValue{
		domain.SelectedOptions{"A", "C"},
		domain.TrueFalseAnswer{Raw: "是"},
		domain.FreeText("indexes avoid full scans"),
		domain.Number{Raw: "about 12.5"},
		domain.Code("print('hi')"),
	}
	for _, value := range values {
		payload, err := encodeAnswerValue(value)
		require.NoError(t, err)

		decoded, err := decodeAnswerValue(payload)
		require.NoError(t, err)
		assert.Equal(t, value, decoded)
	}
}

func TestQuestionModelRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	question := &domain.Question{
		ID:     "q1",
		BankID: "bank-1",
		Kind:   domain.KindChoice,
		Prompt: "pick two",
		Options: []domain.ChoiceOption{
			{Key: "A", Text: "first"},
			{Key: "B", Text: "second"},
			{Key: "C", Text: "third"},
		},
		Key:         domain.ChoiceKey{Correct: "AC"},
		Explanation: "A and C are both prime",
		Difficulty:  domain.DifficultyMedium,
		Points:      2,
		Tags:        []string{"math"},
		OrderIndex:  3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	model, err := toModelQuestion(question)
	require.NoError(t, err)
	assert.Equal(t, "choice", model.Kind)
	assert.True(t, model.Options.Valid)
	assert.True(t, model.Explanation.Valid)

	back, err := toDomainQuestion(model)
	require.NoError(t, err)
	assert.Equal(t, question, back)
}

func TestQuestionModelWithoutOptions(t *testing.T) {
	question := &domain.Question{
		ID:         "q2",
		BankID:     "bank-1",
		Kind:       domain.KindNumeric,
		Prompt:     "how many",
		Key:        domain.NumericKey{Expected: 7},
		Difficulty: domain.DifficultyEasy,
		Points:     1,
	}

	model, err := toModelQuestion(question)
	require.NoError(t, err)
	assert.False(t, model.Options.Valid)
	assert.False(t, model.Explanation.Valid)

	back, err := toDomainQuestion(model)
	require.NoError(t, err)
	assert.Nil(t, back.Options)
	assert.Equal(t, question.Key, back.Key)
}

func TestExamModelRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	start := now.Add(time.Hour)
	end := now.Add(2 * time.Hour)
	exam := &domain.Exam{
		ID:               "exam-1",
		BankID:           "bank-1",
		Title:            "midterm",
		Description:      "covers chapters 1-4",
		QuestionCount:    10,
		TimeLimitMinutes: 45,
		PassScore:        70,
		MaxAttempts:      3,
		KindFilter:       []domain.Kind{domain.KindChoice, domain.KindNumeric},
		DifficultyFilter: []domain.Difficulty{domain.DifficultyHard},
		RandomizeOrder:   true,
		IsActive:         true,
		StartTime:        &start,
		EndTime:          &end,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	back := toDomainExam(toModelExam(exam))
	assert.Equal(t, exam, back)
}

func TestAttemptModelRoundTrip(t *testing.T) {
	started := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	finished := started.Add(20 * time.Minute)
	attempt := &domain.Attempt{
		ID:        "attempt-1",
		ExamID:    "exam-1",
		SubjectID: "subject-1",
		Status:    domain.AttemptCompleted,
		Snapshot: []*domain.Question{
			{
				ID: "q1", Kind: domain.KindChoice, Prompt: "pick",
				Options: []domain.ChoiceOption{{Key: "A", Text: "a"}, {Key: "B", Text: "b"}},
				Key:     domain.ChoiceKey{Correct: "A"}, Difficulty: domain.DifficultyEasy, Points: 1,
			},
			{
				ID: "q2", Kind: domain.KindShortAnswer, Prompt: "explain",
				Key: domain.ShortAnswerKey{Keywords: []string{"cache"}}, Difficulty: domain.DifficultyMedium, Points: 2,
			},
		},
		Answers: map[string]domain.AnswerValue{
			"q1": domain.SelectedOptions{"A"},
			"q2": domain.FreeText("the cache absorbs reads"),
		},
		PassScore:        60,
		TimeLimit:        30 * time.Minute,
		StartedAt:        started,
		FinishedAt:       &finished,
		TotalQuestions:   2,
		CorrectCount:     2,
		Score:            100,
		Passed:           true,
		TimeSpentSeconds: 1200,
	}

	model, err := toModelAttempt(attempt)
	require.NoError(t, err)
	assert.Equal(t, 30, model.TimeLimitMinutes)
	assert.True(t, model.FinishedAt.Valid)

	back, err := toDomainAttempt(model)
	require.NoError(t, err)
	assert.Equal(t, attempt, back)
}
