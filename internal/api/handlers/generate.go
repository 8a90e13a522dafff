package handlers

import (
	"github.com/Conceptual-Machines/orchestra-api/internal/middleware"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation"
	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Generate is the one-shot endpoint behind the index page: it composes a
// default ABA piece and returns it as generated_music.xml
func (h *CompositionHandler) Generate(c *gin.Context) {
	comp, _, err := h.composer.Compose(c.Request.Context(), services.CompositionRequest{
		RequestID: c.GetString("request_id"),
		UserID:    middleware.GetCurrentUserID(c),
	})
	if err != nil {
		respondError(c, "Generation failed", err)
		return
	}
	sendArtifact(c, comp.MusicXMLPath, legacyDownloadName, notation.FormatMusicXML)
}
