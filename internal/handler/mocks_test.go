package handler

import (
	"context"

	"exam-bank/internal/dto"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionService ---
type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) CreateQuestion(ctx context.Context, bankID string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	args := m.Called(ctx, bankID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id string) (*dto.QuestionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) ListQuestions(ctx context.Context, bankID string) ([]dto.QuestionResponse, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) UpdateQuestion(ctx context.Context, id string, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QuestionResponse), args.Error(1)
}

func (m *MockQuestionService) DeleteQuestion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionService) CheckAnswer(ctx context.Context, questionID string, req *dto.CheckAnswerRequest) (*dto.CheckAnswerResponse, error) {
	args := m.Called(ctx, questionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CheckAnswerResponse), args.Error(1)
}

// --- MockExamService ---
type MockExamService struct {
	mock.Mock
}

func (m *MockExamService) CreateExam(ctx context.Context, bankID string, req *dto.ExamRequest) (*dto.ExamResponse, error) {
	args := m.Called(ctx, bankID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExamResponse), args.Error(1)
}

func (m *MockExamService) GetExam(ctx context.Context, id string) (*dto.ExamResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExamResponse), args.Error(1)
}

func (m *MockExamService) ListExams(ctx context.Context, bankID string) ([]dto.ExamResponse, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ExamResponse), args.Error(1)
}

func (m *MockExamService) UpdateExam(ctx context.Context, id string, req *dto.ExamRequest) (*dto.ExamResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExamResponse), args.Error(1)
}

func (m *MockExamService) StartExam(ctx context.Context, examID, subjectID string) (*dto.StartAttemptResponse, error) {
	args := m.Called(ctx, examID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StartAttemptResponse), args.Error(1)
}

func (m *MockExamService) RecordAnswer(ctx context.Context, attemptID, subjectID string, req *dto.RecordAnswerRequest) error {
	args := m.Called(ctx, attemptID, subjectID, req)
	return args.Error(0)
}

func (m *MockExamService) SubmitAttempt(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error) {
	args := m.Called(ctx, attemptID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptResultResponse), args.Error(1)
}

func (m *MockExamService) GetAttemptResult(ctx context.Context, attemptID, subjectID string) (*dto.AttemptResultResponse, error) {
	args := m.Called(ctx, attemptID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttemptResultResponse), args.Error(1)
}

func (m *MockExamService) ListAttempts(ctx context.Context, examID, subjectID string) ([]dto.AttemptSummaryResponse, error) {
	args := m.Called(ctx, examID, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AttemptSummaryResponse), args.Error(1)
}

// --- MockRegradeService ---
type MockRegradeService struct {
	mock.Mock
}

func (m *MockRegradeService) RegradeExam(ctx context.Context, examID string) (*dto.RegradeReport, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RegradeReport), args.Error(1)
}
