package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	"github.com/gin-gonic/gin"
)

const bytesPerMB = 1024 * 1024

type MetricsHandler struct {
	started time.Time
	version string
	backend string
	store   database.Store
}

func NewMetricsHandler(version, continuationBackend string, store database.Store) *MetricsHandler {
	return &MetricsHandler{
		started: time.Now(),
		version: version,
		backend: continuationBackend,
		store:   store,
	}
}

type MetricsResponse struct {
	Status    string                 `json:"status"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	StartTime string                 `json:"start_time"`
	System    SystemMetrics          `json:"system"`
	API       map[string]interface{} `json:"api"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

// formatUptime renders d as 1h2m3.45s, dropping leading zero units
func formatUptime(d time.Duration) string {
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := (d % time.Minute).Seconds()
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%.2fs", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%.2fs", m, s)
	default:
		return fmt.Sprintf("%.2fs", s)
	}
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	api := map[string]interface{}{
		"continuation_backend": h.backend,
		"formats":              []string{"musicxml", "midi"},
	}
	if h.store != nil {
		if latest, err := h.store.Latest(c.Request.Context()); err == nil {
			api["latest_composition"] = gin.H{
				"id":         latest.ID,
				"form":       latest.Form,
				"created_at": latest.CreatedAt.UTC().Format(time.RFC3339),
			}
		}
	}

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(time.Since(h.started)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.started.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   mem.Alloc / bytesPerMB,
			MemTotalMB:   mem.TotalAlloc / bytesPerMB,
			NumGC:        mem.NumGC,
		},
		API: api,
	})
}
