package router

import (
	"aiInsider/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupVisitorRoutes(api *echo.Group, handler *rest.VisitorHandler) {
	visitors := api.Group("/visitors")

	visitors.POST("", handler.Identify)
	visitors.PUT("/:id/consent", handler.SetConsent)
	visitors.POST("/:id/conversions", handler.Convert)
	visitors.POST("/:id/events", handler.TrackEvent)
}

func SetupSessionRoutes(api *echo.Group, handler *rest.SessionHandler) {
	sessions := api.Group("/sessions")

	sessions.POST("", handler.Start)
	sessions.GET("/:id", handler.Get)
	sessions.POST("/:id/actions", handler.RecordAction)
	sessions.POST("/:id/elapsed", handler.RecordElapsed)
}

func SetupLeadRoutes(api *echo.Group, handler *rest.LeadHandler) {
	api.POST("/leads", handler.Capture)
}

func SetupExperimentAdminRoutes(api *echo.Group, handler *rest.ExperimentAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/experiments", authRequired, adminOnly)

	admin.GET("", handler.List)
	admin.PUT("", handler.Upsert)
}
