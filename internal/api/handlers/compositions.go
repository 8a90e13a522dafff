package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/middleware"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/notation"
	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CompositionHandler struct {
	composer *services.Composer
}

func NewCompositionHandler(composer *services.Composer) *CompositionHandler {
	return &CompositionHandler{composer: composer}
}

// CreateCompositionRequest is accepted as JSON or as multipart form fields.
// A multipart request may attach a melody as "file".
type CreateCompositionRequest struct {
	Form          string   `json:"form" form:"form"`
	Key           string   `json:"key" form:"key"`
	TimeSignature string   `json:"time_signature" form:"time_signature"`
	Tempo         int      `json:"tempo" form:"tempo"`
	Temperature   *float64 `json:"temperature" form:"temperature"`
	Measures      int      `json:"measures" form:"measures"`
	Seed          int64    `json:"seed" form:"seed"`
	Title         string   `json:"title" form:"title"`
}

type CompositionResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Key              string `json:"key"`
	Form             string `json:"form"`
	TimeSignature    string `json:"time_signature"`
	Tempo            int    `json:"tempo"`
	Measures         int    `json:"measures"`
	Parts            int    `json:"parts"`
	DownloadURL      string `json:"download_url"`
	MIDIDownloadURL  string `json:"midi_download_url"`
	ContinuationUsed bool   `json:"continuation_used"`
	RequestID        string `json:"request_id"`
}

// Create runs the composition pipeline and returns the new record
func (h *CompositionHandler) Create(c *gin.Context) {
	var req CreateCompositionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
			return
		}
	}

	creq := services.CompositionRequest{
		Form:          req.Form,
		Key:           req.Key,
		TimeSignature: req.TimeSignature,
		Tempo:         req.Tempo,
		Temperature:   req.Temperature,
		Measures:      req.Measures,
		Seed:          req.Seed,
		Title:         req.Title,
		RequestID:     c.GetString("request_id"),
		UserID:        middleware.GetCurrentUserID(c),
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		if fh, err := c.FormFile("file"); err == nil {
			if fh.Size > maxUploadBytes {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", maxUploadBytes)})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
				return
			}
			creq.SourceName = filepath.Base(fh.Filename)
			creq.Source = data
		}
	}

	comp, _, err := h.composer.Compose(c.Request.Context(), creq)
	if err != nil {
		respondError(c, "Composition failed", err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(comp))
}

func toResponse(comp *models.Composition) CompositionResponse {
	download := fmt.Sprintf("/api/v1/compositions/%s/download", comp.ID)
	return CompositionResponse{
		ID:               comp.ID,
		Title:            comp.Title,
		Key:              comp.Key,
		Form:             comp.Form,
		TimeSignature:    comp.TimeSignature,
		Tempo:            comp.Tempo,
		Measures:         comp.Measures,
		Parts:            comp.PartCount,
		DownloadURL:      download,
		MIDIDownloadURL:  download + "?format=" + formatQueryMIDI,
		ContinuationUsed: comp.ContinuationUsed,
		RequestID:        comp.RequestID,
	}
}

// Download streams a stored artifact. The id "latest" selects the most
// recent composition; ?format=midi selects the MIDI file.
func (h *CompositionHandler) Download(c *gin.Context) {
	format := notation.FormatMusicXML
	switch c.Query("format") {
	case "", string(notation.FormatMusicXML):
	case formatQueryMIDI:
		format = notation.FormatMIDI
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown format %q (allowed: musicxml, midi)", c.Query("format"))})
		return
	}

	comp, path, err := h.composer.Artifact(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		respondError(c, "Download failed", err)
		return
	}

	sendArtifact(c, path, downloadName(comp, format), format)
}

func downloadName(comp *models.Composition, format notation.Format) string {
	if format == notation.FormatMIDI {
		return comp.ID + ".mid"
	}
	return comp.ID + ".musicxml"
}

func sendArtifact(c *gin.Context, path, name string, format notation.Format) {
	contentType := notation.MusicXMLContentType
	if format == notation.FormatMIDI {
		contentType = notation.MIDIContentType
	}
	c.Header("Content-Type", contentType)
	c.FileAttachment(path, name)
}

func respondError(c *gin.Context, msg string, err error) {
	status := apperrors.HTTPStatus(err)
	fields := logger.WithContext(c)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, err, fields)
	} else {
		fields["error"] = err.Error()
		logger.Warn(msg, fields)
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
