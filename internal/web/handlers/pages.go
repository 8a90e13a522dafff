package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/web/templates"
	"github.com/gin-gonic/gin"
)

type WebHandler struct {
	version string
}

func NewWebHandler(version string) *WebHandler {
	return &WebHandler{version: version}
}

// Home renders the generator page
func (h *WebHandler) Home(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	component := templates.Index(h.version)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		logger.Error("Failed to render template", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render template"})
	}
}
