package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/cybertest-backend/internal/response"
)

const (
	// HeaderExamSession carries the exam session token issued by start.
	HeaderExamSession = "X-Exam-Session"
	// ContextKeyExamSession is the Gin context key for the exam session token.
	ContextKeyExamSession = "exam_session"
	// maxSessionTokenLen bounds tokens before they are used in store keys.
	maxSessionTokenLen = 64
)

// ExamSessionToken reads the session token from the X-Exam-Session header, falling back
// to the ?session= query param (WebSocket clients cannot set headers). A missing token is
// allowed; handlers that need one use RequireExamSession.
func ExamSessionToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderExamSession))
		if token == "" {
			token = strings.TrimSpace(c.Query("session"))
		}
		if len(token) > maxSessionTokenLen {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		c.Set(ContextKeyExamSession, token)
		c.Next()
	}
}

// RequireExamSession rejects requests that carry no session token.
func RequireExamSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetExamSessionToken(c) == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionRequired)
			return
		}
		c.Next()
	}
}

// GetExamSessionToken returns the session token set by ExamSessionToken, or "".
func GetExamSessionToken(c *gin.Context) string {
	return c.GetString(ContextKeyExamSession)
}
