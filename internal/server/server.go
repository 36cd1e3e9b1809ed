package server

import (
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbergo/guardrails/internal/catalog"
	"github.com/mbergo/guardrails/internal/config"
	"github.com/mbergo/guardrails/internal/gateway"
	"github.com/mbergo/guardrails/internal/guardrail"
	"github.com/mbergo/guardrails/internal/history"
	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/internal/server/middleware"
	"github.com/mbergo/guardrails/internal/server/validator"
)

// Deps carries everything the HTTP layer serves. The server owns no
// business logic: it binds, dispatches and serializes.
type Deps struct {
	Version   string
	Gateway   gateway.Service
	Catalog   catalog.Service
	Guardrail *guardrail.Registry
	Runner    *guardrail.Runner
	History   *history.Ring
	Creds     llm.Credentials
}

type Server struct {
	router *gin.Engine
	config *config.Config
	logger *zap.Logger
	deps   Deps
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))
	engine.Use(middleware.CORS())
	engine.Use(middleware.ErrorHandler())

	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
		engine.Use(limiter.Middleware())
	}

	engine.Use(middleware.Tracing("guardrails-api"))

	s := &Server{
		router: engine,
		config: cfg,
		logger: logger,
		deps:   deps,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
