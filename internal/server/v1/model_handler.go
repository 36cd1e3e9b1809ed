package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbergo/guardrails/internal/catalog"
	"github.com/mbergo/guardrails/pkg/api"
)

type ModelHandler struct {
	catalog catalog.Service
}

func NewModelHandler(svc catalog.Service) *ModelHandler {
	return &ModelHandler{catalog: svc}
}

// Snapshot returns every provider's catalog, fetched concurrently. A
// provider with no key or a broken upstream shows up as an error catalog,
// never as a failed response.
func (h *ModelHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Snapshot(c.Request.Context()))
}

// Get returns a single provider's catalog.
func (h *ModelHandler) Get(c *gin.Context) {
	p, err := api.ParseProvider(c.Param("provider"))
	if err != nil {
		_ = c.Error(api.NotFoundProblem("Unknown provider: " + c.Param("provider")))
		return
	}
	c.JSON(http.StatusOK, h.catalog.Get(c.Request.Context(), p))
}

// Refresh bypasses the catalog cache. With ?provider= it refreshes one
// catalog; without it, both.
func (h *ModelHandler) Refresh(c *gin.Context) {
	if name := c.Query("provider"); name != "" {
		p, err := api.ParseProvider(name)
		if err != nil {
			_ = c.Error(api.BadRequestProblem("Unknown provider: " + name))
			return
		}
		c.JSON(http.StatusOK, gin.H{string(p): h.catalog.Refresh(c.Request.Context(), p)})
		return
	}

	out := make(map[string]api.ModelCatalog)
	for _, p := range api.Providers() {
		out[string(p)] = h.catalog.Refresh(c.Request.Context(), p)
	}
	c.JSON(http.StatusOK, out)
}
