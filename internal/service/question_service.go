package service

import (
	"context"

	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"
	"exam-bank/internal/util"

	"go.uber.org/zap"
)

// QuestionService defines the interface for question bank operations
type QuestionService interface {
	CreateQuestion(ctx context.Context, bankID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, bankID string) ([]dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id string, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id string) error
	CheckAnswer(ctx context.Context, questionID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error)
}

// questionService implements QuestionService
type questionService struct {
	repo  domain.QuestionRepository
	clock domain.Clock
}

// NewQuestionService creates a new instance of questionService
func NewQuestionService(repo domain.QuestionRepository, clock domain.Clock) QuestionService {
	return &questionService{repo: repo, clock: clock}
}

func (s *questionService) CreateQuestion(ctx context.Context, bankID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	question, err := req.ToDomain(bankID)
	if err != nil {
		return nil, err
	}
	if err := question.Validate(); err != nil {
		return nil, err
	}

	question.ID = util.NewULID()
	now := s.clock.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	if err := s.repo.SaveQuestion(ctx, question); err != nil {
		return nil, domain.NewInternalError("Failed to save question", err)
	}

	logger.Get().Info("Question created",
		zap.String("questionID", question.ID),
		zap.String("bankID", bankID),
		zap.String("kind", string(question.Kind)))

	resp := dto.NewQuestionResponse(question)
	return &resp, nil
}

func (s *questionService) GetQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error) {
	question, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(id)
	}

	resp := dto.NewQuestionResponse(question)
	return &resp, nil
}

func (s *questionService) ListQuestions(ctx context.Context, bankID string) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.GetQuestionsByBank(ctx, bankID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list questions", err)
	}

	responses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = dto.NewQuestionResponse(q)
	}
	return responses, nil
}

// UpdateQuestion replaces the editable fields of a stored question and
// re-runs full validation, so a question can never be edited into an
// inconsistent state.
func (s *questionService) UpdateQuestion(ctx context.Context, id string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	existing, err := s.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if existing == nil {
		return nil, domain.NewQuestionNotFoundError(id)
	}

	updated, err := req.ToDomain(existing.BankID)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuestion(ctx, updated); err != nil {
		return nil, err
	}

	logger.Get().Info("Question updated", zap.String("questionID", id))

	resp := dto.NewQuestionResponse(updated)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	logger.Get().Info("Question deleted", zap.String("questionID", id))
	return nil
}

// CheckAnswer grades a single answer against a stored question without
// opening an attempt. The response includes the explanation since the
// outcome is revealed immediately.
func (s *questionService) CheckAnswer(ctx context.Context, questionID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
	question, err := s.repo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	answer, err := req.Answer.ToDomain()
	if err != nil {
		return nil, err
	}
	if answer.Kind() != question.Kind {
		return nil, domain.NewError(domain.CodeInvalidAnswer, "Answer kind does not match the question", nil)
	}

	outcome := domain.Grade(question, answer)
	return &dto.CheckAnswerResponse{
		QuestionID:   question.ID,
		IsCorrect:    outcome.IsCorrect,
		ScoreAwarded: outcome.ScoreAwarded,
		MatchedRule:  outcome.MatchedRule,
		Explanation:  question.Explanation,
	}, nil
}
