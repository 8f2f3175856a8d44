package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cybertest-backend/internal/middleware"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/response"
	"github.com/stemsi/cybertest-backend/internal/service"
	"github.com/stemsi/cybertest-backend/internal/validator"
)

// ExamHandler handles the candidate-facing exam endpoints.
type ExamHandler struct {
	sessionService *service.ExamSessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessionService *service.ExamSessionService) *ExamHandler {
	return &ExamHandler{sessionService: sessionService}
}

// StartExam godoc
// POST /api/v1/exam/start
// Draws a random question set and (re)starts the caller's session. A token sent in
// X-Exam-Session is reused only while its session is live, discarding its previous
// progress; otherwise a new token is issued.
func (h *ExamHandler) StartExam(c *gin.Context) {
	var req model.StartExamRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	started, err := h.sessionService.Start(
		c.Request.Context(),
		middleware.GetExamSessionToken(c),
		req.Versions,
		req.NumQuestions,
	)
	if err != nil {
		failFromError(c, err)
		return
	}

	c.Header(middleware.HeaderExamSession, started.SessionToken)
	response.Success(c, http.StatusOK, started)
}

// SubmitAnswer godoc
// POST /api/v1/exam/answer
// Classifies one answer and returns the session progress.
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.sessionService.RecordAnswer(
		c.Request.Context(),
		middleware.GetExamSessionToken(c),
		req.QuestionID,
		req.Answer,
	)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// ExamStatus godoc
// GET /api/v1/exam/status
// Reports whether an exam is in progress for the session.
func (h *ExamHandler) ExamStatus(c *gin.Context) {
	status, err := h.sessionService.Status(c.Request.Context(), middleware.GetExamSessionToken(c))
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// ClearExam godoc
// POST /api/v1/exam/clear
// Discards the session. Succeeds when no exam is in progress.
func (h *ExamHandler) ClearExam(c *gin.Context) {
	if err := h.sessionService.Clear(c.Request.Context(), middleware.GetExamSessionToken(c)); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "success"})
}
