package rest

import (
	"context"
	"errors"
	"net/http"

	"aiInsider/business/engagement"
	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SessionService interface {
	Start(ctx context.Context, visitorID string) string
	RecordAction(ctx context.Context, sessionID, action string) (engagement.Result, error)
	RecordElapsedTime(ctx context.Context, sessionID string, seconds int) (engagement.Result, error)
	Snapshot(sessionID string) (domain.SessionSnapshot, error)
}

type SessionHandler struct {
	sessions  SessionService
	validator *validator.Validate
}

func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		validator: validator.New(),
	}
}

type StartSessionRequest struct {
	VisitorID string `json:"visitor_id" validate:"required,max=100"`
}

type ActionRequest struct {
	Action string `json:"action" validate:"required,max=100"`
}

type ElapsedRequest struct {
	Seconds int `json:"seconds" validate:"min=0"`
}

// POST /api/v1/sessions
func (h *SessionHandler) Start(c echo.Context) error {
	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	id := h.sessions.Start(c.Request().Context(), req.VisitorID)
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(echo.Map{"session_id": id}))
}

// POST /api/v1/sessions/:id/actions
func (h *SessionHandler) RecordAction(c echo.Context) error {
	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res, err := h.sessions.RecordAction(c.Request().Context(), c.Param("id"), req.Action)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// POST /api/v1/sessions/:id/elapsed
func (h *SessionHandler) RecordElapsed(c echo.Context) error {
	var req ElapsedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	res, err := h.sessions.RecordElapsedTime(c.Request().Context(), c.Param("id"), req.Seconds)
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c echo.Context) error {
	snap, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(snap))
}

func sessionError(c echo.Context, err error) error {
	if errors.Is(err, engagement.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: err.Error()})
	}
	logger.Error("Session request failed", "session_id", c.Param("id"), "error", err)
	return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
}
