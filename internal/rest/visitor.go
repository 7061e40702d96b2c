package rest

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"aiInsider/business/visitor"
	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type VisitorService interface {
	Identify(ctx context.Context, visitorID, pageURL string) (domain.Visitor, error)
	SetConsent(ctx context.Context, visitorID, level string) error
	Convert(ctx context.Context, visitorID, goal, pageURL string) ([]string, error)
	TrackEvent(ctx context.Context, visitorID string, ev domain.PageEvent) error
}

var eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func validEventName(fl validator.FieldLevel) bool {
	return eventNamePattern.MatchString(fl.Field().String())
}

type VisitorHandler struct {
	visitorService VisitorService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewVisitorHandler(visitorService VisitorService) *VisitorHandler {
	v := validator.New()
	_ = v.RegisterValidation("event_name", validEventName)
	return &VisitorHandler{
		visitorService: visitorService,
		validator:      v,
		timeout:        5 * time.Second,
	}
}

type IdentifyRequest struct {
	VisitorID string `json:"visitor_id" validate:"max=100"`
	PageURL   string `json:"page_url" validate:"max=2000"`
}

type ConsentRequest struct {
	Consent string `json:"consent" validate:"required,oneof=all essential"`
}

type ConversionRequest struct {
	Goal    string `json:"goal" validate:"required,max=100"`
	PageURL string `json:"page_url" validate:"max=2000"`
}

type TrackEventRequest struct {
	Name       string         `json:"name" validate:"required,event_name"`
	SessionID  string         `json:"session_id" validate:"max=100"`
	PageURL    string         `json:"page_url" validate:"max=2000"`
	Properties map[string]any `json:"properties" validate:"max=32"`
}

// POST /api/v1/visitors
func (h *VisitorHandler) Identify(c echo.Context) error {
	var req IdentifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	v, err := h.visitorService.Identify(ctx, req.VisitorID, req.PageURL)
	if err != nil {
		logger.Error("Failed to identify visitor", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to identify visitor"})
	}

	if v.IsNew {
		return c.JSON(http.StatusCreated, fres.Response.StatusCreated(v))
	}
	return c.JSON(http.StatusOK, fres.Response.StatusOK(v))
}

// PUT /api/v1/visitors/:id/consent
func (h *VisitorHandler) SetConsent(c echo.Context) error {
	var req ConsentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.visitorService.SetConsent(ctx, c.Param("id"), req.Consent); err != nil {
		return visitorError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(echo.Map{"consent": req.Consent}))
}

// POST /api/v1/visitors/:id/conversions
func (h *VisitorHandler) Convert(c echo.Context) error {
	var req ConversionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	experiments, err := h.visitorService.Convert(ctx, c.Param("id"), req.Goal, req.PageURL)
	if err != nil {
		return visitorError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(echo.Map{"experiments": experiments}))
}

// POST /api/v1/visitors/:id/events
func (h *VisitorHandler) TrackEvent(c echo.Context) error {
	var req TrackEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.visitorService.TrackEvent(ctx, c.Param("id"), domain.PageEvent{
		Name:       req.Name,
		SessionID:  req.SessionID,
		PageURL:    req.PageURL,
		Properties: req.Properties,
	})
	if err != nil {
		return visitorError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(echo.Map{"event": req.Name}))
}

func visitorError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, visitor.ErrVisitorNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, visitor.ErrInvalidConsent), errors.Is(err, visitor.ErrReservedEvent):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	default:
		logger.Error("Visitor request failed", "visitor_id", c.Param("id"), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}
}
