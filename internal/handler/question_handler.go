package handler

import (
	"questa-search/internal/domain"
	"questa-search/internal/dto"
	"questa-search/internal/logger"
	"questa-search/internal/middleware"
	"questa-search/internal/search"
	"questa-search/internal/service"
	"questa-search/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// QuestionHandler handles single-question and subject listing requests.
type QuestionHandler struct {
	service    service.SearchService
	validator  *validation.Validator
	normalizer search.Normalizer
}

func NewQuestionHandler(svc service.SearchService) *QuestionHandler {
	return &QuestionHandler{
		service:    svc,
		validator:  validation.NewValidator(),
		normalizer: search.NewNormalizer(DefaultListLimit, MaxListLimit),
	}
}

// GetQuestion godoc
// @Summary Get a question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	id, _ := c.Locals(middleware.ValidatedIDKey).(string)
	q, err := h.service.GetQuestion(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.QuestionResponse{Question: q})
}

// ListQuestions godoc
// @Summary List questions of a subject
// @Description Newest first. Accepts the same filters as search except q and sort.
// @Tags questions
// @Produce json
// @Param subject query string true "Subject"
// @Param difficulties query string false "Comma separated difficulties"
// @Param types query string false "Comma separated question types"
// @Param tags query string false "Comma separated tags"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} dto.SearchQuestionsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	subject, _ := c.Locals(middleware.ValidatedSubjectKey).(string)
	req := h.normalizer.Normalize(search.RawQueryFromValues(queryValues(c)))
	req.Filter.Subjects = []domain.Subject{domain.Subject(subject)}
	req.Filter.Query = ""
	req.Sort = domain.SortCreatedDesc

	res, err := h.service.ListBySubject(c.UserContext(), domain.Subject(subject), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSearchQuestionsResponse(req, res))
}

// CreateQuestion godoc
// @Summary Create a question
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param question body dto.QuestionRequest true "Question"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return err
	}
	q, err := h.service.CreateQuestion(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.QuestionResponse{Question: q})
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Param question body dto.QuestionRequest true "Question"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if err != nil {
		return err
	}
	id, _ := c.Locals(middleware.ValidatedIDKey).(string)
	if req.ID != "" && req.ID != id {
		return domain.NewInvalidInputError("body id does not match path id")
	}
	q := req.ToDomain()
	q.ID = id

	updated, err := h.service.UpdateQuestion(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.QuestionResponse{Question: updated})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Security ApiKeyAuth
// @Param id path string true "Question ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, _ := c.Locals(middleware.ValidatedIDKey).(string)
	if err := h.service.DeleteQuestion(c.UserContext(), id); err != nil {
		return err
	}
	editor, _ := c.Locals(middleware.EditorIDKey).(string)
	logger.Get().Info("Question deleted", zap.String("question_id", id), zap.String("editor_id", editor))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *QuestionHandler) parseRequest(c *fiber.Ctx) (*dto.QuestionRequest, error) {
	var req dto.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateQuestionRequest(&req); len(errs) > 0 {
		return nil, errs
	}
	return &req, nil
}
