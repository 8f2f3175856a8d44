package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/response"
	"github.com/stemsi/cybertest-backend/internal/service"
	"github.com/stemsi/cybertest-backend/internal/validator"
)

// QuestionHandler handles question bank management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// ListVersions godoc
// GET /api/v1/admin/versions
// Lists the versions a question may be filed under.
func (h *QuestionHandler) ListVersions(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"versions": h.questionService.Versions()})
}

// ListQuestions godoc
// GET /api/v1/admin/questions
// Lists the question bank, newest version first.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetQuestion godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// CreateQuestion godoc
// POST /api/v1/admin/questions
// Validates and stores a new question.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var form model.QuestionForm
	if fields := validator.Bind(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), form)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/questions/:id
// Re-validates and replaces an existing question.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var form model.QuestionForm
	if fields := validator.Bind(c, &form); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.questionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Question deleted"})
}
