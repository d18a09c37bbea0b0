package handler

import (
	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"
	"exam-bank/internal/middleware"
	"exam-bank/internal/service"
	"exam-bank/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ExamHandler handles exam and attempt HTTP requests
type ExamHandler struct {
	examService    service.ExamService
	regradeService service.RegradeService
	validator      *validation.Validator
}

// NewExamHandler creates a new ExamHandler instance
func NewExamHandler(examService service.ExamService, regradeService service.RegradeService) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		regradeService: regradeService,
		validator:      validation.NewValidator(),
	}
}

// subjectID pulls the authenticated subject out of the request context.
func subjectID(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(middleware.SubjectIDKey).(string)
	if !ok || id == "" {
		return "", domain.NewUnauthorizedError("Subject identity missing from request context")
	}
	return id, nil
}

// CreateExam handles POST /banks/:bankId/exams
func (h *ExamHandler) CreateExam(c *fiber.Ctx) error {
	bankID := c.Locals("validated_bank_id").(string)

	var req dto.ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.examService.CreateExam(c.Context(), bankID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListExams handles GET /banks/:bankId/exams
func (h *ExamHandler) ListExams(c *fiber.Ctx) error {
	bankID := c.Locals("validated_bank_id").(string)

	exams, err := h.examService.ListExams(c.Context(), bankID)
	if err != nil {
		return err
	}
	return c.JSON(exams)
}

// GetExam handles GET /exams/:examId
func (h *ExamHandler) GetExam(c *fiber.Ctx) error {
	id := c.Locals("validated_examId").(string)

	resp, err := h.examService.GetExam(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateExam handles PUT /exams/:examId
func (h *ExamHandler) UpdateExam(c *fiber.Ctx) error {
	id := c.Locals("validated_examId").(string)

	var req dto.ExamRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.examService.UpdateExam(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// StartExam handles POST /exams/:examId/start
func (h *ExamHandler) StartExam(c *fiber.Ctx) error {
	examID := c.Locals("validated_examId").(string)
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	resp, err := h.examService.StartExam(c.Context(), examID, subject)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// RecordAnswer handles POST /attempts/:attemptId/answers
func (h *ExamHandler) RecordAnswer(c *fiber.Ctx) error {
	attemptID := c.Locals("validated_attemptId").(string)
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	var req dto.RecordAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if req.QuestionID == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("question_id")}
	}
	if errs := h.validator.ValidateAnswerInput(req.Answer); len(errs) > 0 {
		return errs
	}

	if err := h.examService.RecordAnswer(c.Context(), attemptID, subject, &req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SubmitAttempt handles POST /attempts/:attemptId/submit
func (h *ExamHandler) SubmitAttempt(c *fiber.Ctx) error {
	attemptID := c.Locals("validated_attemptId").(string)
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	resp, err := h.examService.SubmitAttempt(c.Context(), attemptID, subject)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetAttemptResult handles GET /attempts/:attemptId/result
func (h *ExamHandler) GetAttemptResult(c *fiber.Ctx) error {
	attemptID := c.Locals("validated_attemptId").(string)
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	resp, err := h.examService.GetAttemptResult(c.Context(), attemptID, subject)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListAttempts handles GET /exams/:examId/attempts. It lists the
// authenticated subject's own attempts.
func (h *ExamHandler) ListAttempts(c *fiber.Ctx) error {
	examID := c.Locals("validated_examId").(string)
	subject, err := subjectID(c)
	if err != nil {
		return err
	}

	attempts, err := h.examService.ListAttempts(c.Context(), examID, subject)
	if err != nil {
		return err
	}
	return c.JSON(attempts)
}

// RegradeExam handles POST /exams/:examId/regrade
func (h *ExamHandler) RegradeExam(c *fiber.Ctx) error {
	examID := c.Locals("validated_examId").(string)

	report, err := h.regradeService.RegradeExam(c.Context(), examID)
	if err != nil {
		logger.Get().Error("Regrade failed", zap.String("examID", examID), zap.Error(err))
		return err
	}
	return c.JSON(report)
}
