package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbergo/guardrails/internal/llm"
	"github.com/mbergo/guardrails/pkg/api"
)

type HealthHandler struct {
	version string
	creds   llm.Credentials
}

func NewHealthHandler(version string, creds llm.Credentials) *HealthHandler {
	return &HealthHandler{version: version, creds: creds}
}

// Health reports liveness plus which providers have a key configured. No
// upstream calls are made: a configured key is enough to list a provider as
// available, and its catalog endpoint tells the rest.
func (h *HealthHandler) Health(c *gin.Context) {
	providers := make(map[string]bool, len(api.Providers()))
	for _, p := range api.Providers() {
		_, ok := h.creds.Resolve(p)
		providers[string(p)] = ok
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"providers": providers,
	})
}
