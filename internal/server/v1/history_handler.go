package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbergo/guardrails/internal/history"
)

type HistoryHandler struct {
	ring *history.Ring
}

func NewHistoryHandler(ring *history.Ring) *HistoryHandler {
	return &HistoryHandler{ring: ring}
}

// List returns recent gateway calls, most recent first. The view is bounded
// and in-memory only; restarting the server clears it.
func (h *HistoryHandler) List(c *gin.Context) {
	records := h.ring.List()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}
