package service

import (
	"context"
	"testing"
	"time"

	"exam-bank/internal/domain"
	"exam-bank/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func choiceQuestionRequest() *dto.QuestionRequest {
	return &dto.QuestionRequest{
		Kind:   "choice",
		Prompt: "Which layer owns grading?",
		Options: []dto.ChoiceOptionDTO{
			{Key: "A", Text: "domain"},
			{Key: "B", Text: "handler"},
		},
		AnswerKey:   dto.AnswerKeyRequest{CorrectOption: "A"},
		Explanation: "grading is pure domain logic",
		Difficulty:  "easy",
	}
}

func TestCreateQuestion(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	var saved *domain.Question
	repo.On("SaveQuestion", mock.Anything, mock.AnythingOfType("*domain.Question")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Question) }).
		Return(nil)

	resp, err := svc.CreateQuestion(context.Background(), "bank-1", choiceQuestionRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "choice", resp.Kind)
	require.NotNil(t, resp.AnswerKey)
	assert.Equal(t, "A", resp.AnswerKey.CorrectOption)

	require.NotNil(t, saved)
	assert.Equal(t, "bank-1", saved.BankID)
	assert.Equal(t, serviceTestStart, saved.CreatedAt)
	repo.AssertExpectations(t)
}

func TestCreateQuestionValidationFailure(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	req := choiceQuestionRequest()
	req.AnswerKey.CorrectOption = "Z" // not among the options

	_, err := svc.CreateQuestion(context.Background(), "bank-1", req)
	var validationErrs domain.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	repo.AssertNotCalled(t, "SaveQuestion", mock.Anything, mock.Anything)
}

func TestGetQuestionNotFound(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	repo.On("GetQuestionByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetQuestion(context.Background(), "missing")
	domainErr, ok := err.(*domain.DomainError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeQuestionNotFound, domainErr.Code)
}

func TestUpdateQuestionKeepsIdentity(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	existing := &domain.Question{
		ID: "q1", BankID: "bank-1", Kind: domain.KindTrueFalse, Prompt: "old",
		Key:        domain.TrueFalseKey{Value: "true"},
		Difficulty: domain.DifficultyMedium, Points: 1,
		CreatedAt: serviceTestStart.Add(-24 * time.Hour),
	}
	repo.On("GetQuestionByID", mock.Anything, "q1").Return(existing, nil)

	var updated *domain.Question
	repo.On("UpdateQuestion", mock.Anything, mock.AnythingOfType("*domain.Question")).
		Run(func(args mock.Arguments) { updated = args.Get(1).(*domain.Question) }).
		Return(nil)

	req := &dto.QuestionRequest{
		Kind:      "true_false",
		Prompt:    "new prompt",
		AnswerKey: dto.AnswerKeyRequest{IsTrue: "false"},
	}
	resp, err := svc.UpdateQuestion(context.Background(), "q1", req)
	require.NoError(t, err)

	assert.Equal(t, "q1", resp.ID)
	require.NotNil(t, updated)
	assert.Equal(t, "bank-1", updated.BankID)
	assert.Equal(t, existing.CreatedAt, updated.CreatedAt)
	assert.Equal(t, serviceTestStart, updated.UpdatedAt)
	assert.Equal(t, "new prompt", updated.Prompt)
}

func TestCheckAnswerGrades(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	question := &domain.Question{
		ID: "q1", BankID: "bank-1", Kind: domain.KindNumeric, Prompt: "2+2",
		Key: domain.NumericKey{Expected: 4}, Difficulty: domain.DifficultyEasy, Points: 2,
		Explanation: "basic arithmetic",
	}
	repo.On("GetQuestionByID", mock.Anything, "q1").Return(question, nil)

	resp, err := svc.CheckAnswer(context.Background(), "q1", &dto.CheckAnswerRequest{
		Answer: dto.AnswerInput{Kind: "numeric", Value: "4.0"},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCorrect)
	assert.Equal(t, 2, resp.ScoreAwarded)
	assert.Equal(t, "basic arithmetic", resp.Explanation)
}

func TestCheckAnswerKindMismatch(t *testing.T) {
	repo := new(MockQuestionRepository)
	svc := NewQuestionService(repo, &fixedClock{now: serviceTestStart})

	question := &domain.Question{
		ID: "q1", BankID: "bank-1", Kind: domain.KindNumeric, Prompt: "2+2",
		Key: domain.NumericKey{Expected: 4}, Difficulty: domain.DifficultyEasy, Points: 1,
	}
	repo.On("GetQuestionByID", mock.Anything, "q1").Return(question, nil)

	_, err := svc.CheckAnswer(context.Background(), "q1", &dto.CheckAnswerRequest{
		Answer: dto.AnswerInput{Kind: "short_answer", Value: "four"},
	})
	domainErr, ok := err.(*domain.DomainError)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidAnswer, domainErr.Code)
}
