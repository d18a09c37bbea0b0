package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Question errors
	CodeQuestionNotFound ErrorCode = "QUESTION_NOT_FOUND"
	CodeInvalidAnswer    ErrorCode = "INVALID_ANSWER"

	// Exam and attempt errors
	CodeExamNotFound          ErrorCode = "EXAM_NOT_FOUND"
	CodeAttemptNotFound       ErrorCode = "ATTEMPT_NOT_FOUND"
	CodeInsufficientQuestions ErrorCode = "INSUFFICIENT_QUESTIONS"
	CodeAttemptsExhausted     ErrorCode = "ATTEMPTS_EXHAUSTED"
	CodeOutsideActiveWindow   ErrorCode = "OUTSIDE_ACTIVE_WINDOW"
	CodeAttemptInProgress     ErrorCode = "ATTEMPT_IN_PROGRESS"
	CodeAttemptNotInProgress  ErrorCode = "ATTEMPT_NOT_IN_PROGRESS"
	CodeUnknownQuestion       ErrorCode = "UNKNOWN_QUESTION"
	CodeAlreadyFinished       ErrorCode = "ALREADY_FINISHED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches diagnostic payload to the error and returns it.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Helper functions for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewQuestionNotFoundError(questionID string) *DomainError {
	return NewError(CodeQuestionNotFound, fmt.Sprintf("Question not found with ID: %s", questionID), nil)
}

func NewExamNotFoundError(examID string) *DomainError {
	return NewError(CodeExamNotFound, fmt.Sprintf("Exam not found with ID: %s", examID), nil)
}

func NewAttemptNotFoundError(attemptID string) *DomainError {
	return NewError(CodeAttemptNotFound, fmt.Sprintf("Attempt not found with ID: %s", attemptID), nil)
}

// NewInsufficientQuestionsError reports a selection that cannot be satisfied.
// The required/available counts are carried as diagnostic context.
func NewInsufficientQuestionsError(required, available int) *DomainError {
	return NewError(CodeInsufficientQuestions,
		fmt.Sprintf("Not enough questions match the exam filters: required %d, available %d", required, available), nil).
		WithContext("required", required).
		WithContext("available", available)
}

func NewAttemptsExhaustedError(maxAttempts int) *DomainError {
	return NewError(CodeAttemptsExhausted,
		fmt.Sprintf("Maximum number of attempts (%d) reached for this exam", maxAttempts), nil).
		WithContext("max_attempts", maxAttempts)
}

func NewOutsideActiveWindowError(reason string) *DomainError {
	return NewError(CodeOutsideActiveWindow, reason, nil)
}

func NewAttemptInProgressError(attemptID string) *DomainError {
	return NewError(CodeAttemptInProgress, "An attempt for this exam is already in progress", nil).
		WithContext("attempt_id", attemptID)
}

func NewNotInProgressError(attemptID string, status AttemptStatus) *DomainError {
	return NewError(CodeAttemptNotInProgress,
		fmt.Sprintf("Attempt %s is not in progress (status: %s)", attemptID, status), nil)
}

func NewUnknownQuestionError(questionID string) *DomainError {
	return NewError(CodeUnknownQuestion,
		fmt.Sprintf("Question %s is not part of this attempt", questionID), nil)
}

func NewAlreadyFinishedError(attemptID string) *DomainError {
	return NewError(CodeAlreadyFinished,
		fmt.Sprintf("Attempt %s has already been finished", attemptID), nil)
}
