package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aiInsider/business/lead"
	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type LeadService interface {
	Capture(ctx context.Context, form domain.LeadForm) (domain.LeadResult, error)
}

type LeadHandler struct {
	leadService LeadService
	timeout     time.Duration
}

func NewLeadHandler(leadService LeadService) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		timeout:     15 * time.Second,
	}
}

// POST /api/v1/leads
func (h *LeadHandler) Capture(c echo.Context) error {
	var form domain.LeadForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.leadService.Capture(ctx, form)
	if err != nil {
		if errors.Is(err, lead.ErrInvalidLead) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to capture lead", "visitor_id", form.VisitorID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "failed to capture lead"})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(res))
}
