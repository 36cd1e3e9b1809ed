package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbergo/guardrails/internal/gateway"
	"github.com/mbergo/guardrails/internal/server/validator"
	"github.com/mbergo/guardrails/pkg/api"
)

type CallHandler struct {
	service gateway.Service
}

func NewCallHandler(service gateway.Service) *CallHandler {
	return &CallHandler{service: service}
}

// Call proxies one canonical AI call. Once the body binds, the response is
// always 200 with a CallResult: provider failures, safety blocks and
// timeouts are data, not HTTP errors. An unknown provider value is also
// answered in-band as {"error": "Invalid AI provider."}.
func (h *CallHandler) Call(c *gin.Context) {
	var req api.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationProblem(validator.ParseValidationError(err)))
		return
	}

	result := h.service.Call(c.Request.Context(), &req)
	c.JSON(http.StatusOK, result)
}
