package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/cybertest-backend/internal/middleware"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/response"
	"github.com/stemsi/cybertest-backend/internal/service"
	"github.com/stemsi/cybertest-backend/internal/validator"
	ws "github.com/stemsi/cybertest-backend/internal/websocket"
)

// Throttle admits or refuses one request for key. *middleware.RateLimiter satisfies it.
type Throttle interface {
	Allow(key string) bool
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams answer submissions for one exam session over a WebSocket.
type WSHandler struct {
	sessionService *service.ExamSessionService
	throttle       Throttle
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. Every message on a stream draws from the
// client's throttle budget, the one shared with the HTTP exam routes; a nil throttle
// disables the check.
func NewWSHandler(sessionService *service.ExamSessionService, throttle Throttle, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		throttle:       throttle,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream?session=<token>
// Accepts answer, status and ping actions for an active session.
func (h *WSHandler) ExamStream(c *gin.Context) {
	token := middleware.GetExamSessionToken(c)

	status, err := h.sessionService.Status(c.Request.Context(), token)
	if err != nil {
		failFromError(c, err)
		return
	}
	if !status.Active {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	clientIP := c.ClientIP()
	wsLog := h.log.With().Str("client_ip", clientIP).Logger()
	wsLog.Debug().Msg("Exam stream connected")

	// The request context ends once the handler returns, so actions get their own.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var writeErr error
		if h.throttle != nil && !h.throttle.Allow(clientIP) {
			writeErr = ws.WriteError(conn, string(response.ErrRateLimitExceeded), response.GetMessage(response.ErrRateLimitExceeded))
		} else {
			writeErr = h.dispatch(ctx, conn, token, &msg)
		}
		if writeErr != nil {
			wsLog.Debug().Err(writeErr).Msg("Write failed, closing stream")
			return
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, conn *websocket.Conn, token string, msg *ws.RequestPayload) error {
	switch msg.Action {
	case ws.ActionAnswer:
		return h.handleAnswer(ctx, conn, token, msg)
	case ws.ActionStatus:
		return h.handleStatus(ctx, conn, token)
	case ws.ActionPing:
		return ws.WriteTyped(conn, ws.ResponsePayload{Event: ws.EventPong})
	default:
		return ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(msg.Action))
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, token string, msg *ws.RequestPayload) error {
	// Same bounds as POST /api/v1/exam/answer.
	req := model.SubmitAnswerRequest{QuestionID: msg.QuestionID, Answer: msg.Answer}
	if fields := validator.Validate(&req); fields != nil {
		return ws.WriteError(conn, string(response.ErrValidation), joinFieldErrors(fields))
	}

	outcome, err := h.sessionService.RecordAnswer(ctx, token, req.QuestionID, req.Answer)
	if err != nil {
		return writeServiceError(conn, err)
	}
	return ws.WriteJSON(conn, ws.EventResult, outcome)
}

func (h *WSHandler) handleStatus(ctx context.Context, conn *websocket.Conn, token string) error {
	status, err := h.sessionService.Status(ctx, token)
	if err != nil {
		return writeServiceError(conn, err)
	}
	return ws.WriteJSON(conn, ws.EventStatus, status)
}

func joinFieldErrors(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = fields[name]
	}
	return strings.Join(msgs, "; ")
}

func writeServiceError(conn *websocket.Conn, err error) error {
	code := response.ErrInternal
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		code = response.ErrSessionNotFound
	case errors.Is(err, service.ErrStoreUnavailable):
		code = response.ErrStoreUnavailable
	}
	return ws.WriteError(conn, string(code), response.GetMessage(code))
}
