package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/mbergo/guardrails/internal/server/v1"
	"github.com/mbergo/guardrails/pkg/api"
)

func (s *Server) SetupRoutes() {
	healthHandler := v1.NewHealthHandler(s.deps.Version, s.deps.Creds)
	s.router.GET("/health", healthHandler.Health)

	group := s.router.Group("/v1")
	{
		callHandler := v1.NewCallHandler(s.deps.Gateway)
		group.POST("/call", callHandler.Call)

		modelHandler := v1.NewModelHandler(s.deps.Catalog)
		group.GET("/models", modelHandler.Snapshot)
		group.GET("/models/:provider", modelHandler.Get)
		group.POST("/models/refresh", modelHandler.Refresh)

		guardrailHandler := v1.NewGuardrailHandler(s.deps.Guardrail, s.deps.Runner)
		group.GET("/guardrails", guardrailHandler.List)
		group.POST("/guardrails/:id/run", guardrailHandler.Run)

		historyHandler := v1.NewHistoryHandler(s.deps.History)
		group.GET("/history", historyHandler.List)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.Header("Content-Type", "application/problem+json")
		c.JSON(http.StatusNotFound, api.NotFoundProblem("The requested resource does not exist."))
	})
}
