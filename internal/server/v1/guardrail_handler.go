package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbergo/guardrails/internal/guardrail"
	"github.com/mbergo/guardrails/internal/server/validator"
	"github.com/mbergo/guardrails/pkg/api"
)

type GuardrailHandler struct {
	registry *guardrail.Registry
	runner   *guardrail.Runner
}

func NewGuardrailHandler(registry *guardrail.Registry, runner *guardrail.Runner) *GuardrailHandler {
	return &GuardrailHandler{registry: registry, runner: runner}
}

// List returns the check catalog the sidebar renders, grouped by category
// order.
func (h *GuardrailHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"checks": h.registry.List()})
}

// runRequest is the guardrail variant of the call request: the prompt is
// optional because every check carries a default.
type runRequest struct {
	Provider          string  `json:"provider" binding:"required"`
	Model             string  `json:"model" binding:"required"`
	Prompt            string  `json:"prompt"`
	SystemMessage     string  `json:"system_message"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	EnableWebSearch   bool    `json:"enable_web_search"`
	RequestJSONOutput bool    `json:"request_json_output"`
}

// Run executes one check: gateway call, then heuristic verdict.
func (h *GuardrailHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseValidationError(err)))
		return
	}

	call := &api.CallRequest{
		Provider:          req.Provider,
		Model:             req.Model,
		Prompt:            req.Prompt,
		SystemMessage:     req.SystemMessage,
		Temperature:       req.Temperature,
		MaxTokens:         req.MaxTokens,
		EnableWebSearch:   req.EnableWebSearch,
		RequestJSONOutput: req.RequestJSONOutput,
	}

	out, err := h.runner.Run(c.Request.Context(), c.Param("id"), call)
	if err != nil {
		if errors.Is(err, guardrail.ErrUnknownCheck) {
			_ = c.Error(api.NotFoundProblem("Unknown guardrail check: " + c.Param("id")))
			return
		}
		_ = c.Error(api.InternalProblem("Failed to run guardrail check", err))
		return
	}

	c.JSON(http.StatusOK, out)
}
