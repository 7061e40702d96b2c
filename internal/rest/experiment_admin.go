package rest

import (
	"context"
	"net/http"

	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type ExperimentCatalog interface {
	Config() domain.ExperimentConfig
	Upsert(ctx context.Context, exp domain.Experiment) ([]error, error)
}

type ExperimentAdminHandler struct {
	catalog ExperimentCatalog
}

func NewExperimentAdminHandler(catalog ExperimentCatalog) *ExperimentAdminHandler {
	return &ExperimentAdminHandler{catalog: catalog}
}

// GET /api/v1/admin/experiments
func (h *ExperimentAdminHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.catalog.Config()))
}

// PUT /api/v1/admin/experiments
// body: Experiment JSON
func (h *ExperimentAdminHandler) Upsert(c echo.Context) error {
	var body domain.Experiment
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body: " + err.Error()})
	}
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "name is required"})
	}

	warnings, err := h.catalog.Upsert(c.Request().Context(), body)
	if err != nil {
		logger.Error("Failed to upsert experiment", "experiment", body.Name, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	msgs := make([]string, 0, len(warnings))
	for _, w := range warnings {
		msgs = append(msgs, w.Error())
	}
	logger.Info("experiment_upserted", "experiment", body.Name, "by", c.Get("user_id"), "warnings", len(msgs))

	return c.JSON(http.StatusOK, fres.Response.StatusOK(echo.Map{
		"experiment": body,
		"warnings":   msgs,
	}))
}
