package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/engine"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	eng *engine.Engine
}

func NewHealthHandler(eng *engine.Engine) *HealthHandler {
	return &HealthHandler{eng: eng}
}

// GetHealth always returns 200 if the process is running; used for
// basic liveness probes.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bracket-engine",
	})
}

// GetReady returns 200 only once the engine can rebuild a
// TournamentState against the configured store.
func (h *HealthHandler) GetReady(c *gin.Context) {
	if _, err := h.eng.State(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
