package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

type HealthHandler struct {
	store   database.Store
	backend string
}

func NewHealthHandler(store database.Store, continuationBackend string) *HealthHandler {
	return &HealthHandler{store: store, backend: continuationBackend}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":       overall,
		"database":     dbStatus,
		"continuation": h.backend,
	})
}
