package handler

import (
	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
	"exam-bank/internal/logger"
	"exam-bank/internal/service"
	"exam-bank/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionHandler handles question bank HTTP requests
type QuestionHandler struct {
	service   service.QuestionService
	validator *validation.Validator
}

// NewQuestionHandler creates a new QuestionHandler instance
func NewQuestionHandler(service service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateQuestion handles POST /banks/:bankId/questions
func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	bankID := c.Locals("validated_bank_id").(string)

	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.service.CreateQuestion(c.Context(), bankID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuestions handles GET /banks/:bankId/questions
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	bankID := c.Locals("validated_bank_id").(string)

	questions, err := h.service.ListQuestions(c.Context(), bankID)
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// GetQuestion handles GET /questions/:questionId
func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	id := c.Locals("validated_questionId").(string)

	resp, err := h.service.GetQuestion(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UpdateQuestion handles PUT /questions/:questionId
func (h *QuestionHandler) UpdateQuestion(c *fiber.Ctx) error {
	id := c.Locals("validated_questionId").(string)

	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	resp, err := h.service.UpdateQuestion(c.Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuestion handles DELETE /questions/:questionId
func (h *QuestionHandler) DeleteQuestion(c *fiber.Ctx) error {
	id := c.Locals("validated_questionId").(string)

	if err := h.service.DeleteQuestion(c.Context(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckAnswer handles POST /questions/:questionId/check. It grades one
// answer outside any attempt, for practice flows.
func (h *QuestionHandler) CheckAnswer(c *fiber.Ctx) error {
	id := c.Locals("validated_questionId").(string)

	var req dto.CheckAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateAnswerInput(req.Answer); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.CheckAnswer(c.Context(), id, &req)
	if err != nil {
		logger.Get().Warn("Answer check failed",
			zap.String("questionID", id),
			zap.Error(err))
		return err
	}
	return c.JSON(resp)
}
