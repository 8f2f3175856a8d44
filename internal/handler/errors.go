package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cybertest-backend/internal/response"
	"github.com/stemsi/cybertest-backend/internal/service"
)

var validationCodes = map[service.ValidationKind]response.ErrCode{
	service.InvalidVersion:      response.ErrInvalidVersion,
	service.QuestionTooShort:    response.ErrQuestionTooShort,
	service.InsufficientOptions: response.ErrInsufficientOptions,
	service.CorrectNotInOptions: response.ErrCorrectNotInOptions,
	service.DuplicateQuestion:   response.ErrDuplicateQuestion,
}

// failFromError writes the error response matching a service error.
func failFromError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		code, known := validationCodes[ve.Kind]
		if !known {
			code = response.ErrValidation
		}
		status := http.StatusUnprocessableEntity
		if ve.Kind == service.DuplicateQuestion {
			status = http.StatusConflict
		}
		response.FailWithMessage(c, status, code, ve.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrRateLimited):
		response.Fail(c, http.StatusTooManyRequests, response.ErrTooManyLoginAttempt)
	case errors.Is(err, service.ErrStoreUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStoreUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
