package continuation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

const maxErrorBody = 512

// HTTPGenerator calls an external sequence-model service, for example a
// melody RNN behind a small REST wrapper. The service must answer
// POST {url}/continue.
type HTTPGenerator struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewHTTPGenerator creates a client for the service at apiURL
func NewHTTPGenerator(apiURL, apiKey string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

type continueRequest struct {
	Primer          []models.NoteEvent `json:"primer"`
	Temperature     float64            `json:"temperature"`
	WindowBeats     float64            `json:"window_beats"`
	Tempo           int                `json:"tempo,omitempty"`
	Key             string             `json:"key,omitempty"`
	BeatsPerMeasure int                `json:"beats_per_measure,omitempty"`
}

type continueResponse struct {
	Notes []models.NoteEvent `json:"notes"`
	Error string             `json:"error,omitempty"`
}

func (g *HTTPGenerator) Name() string {
	return BackendHTTP
}

func (g *HTTPGenerator) Continue(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error) {
	start := time.Now()
	notes, err := g.post(ctx, primer, opts)
	logger.LogContinuation(ctx, BackendHTTP, time.Since(start), len(notes), err)
	if err != nil {
		return nil, apperrors.NewGenerationError(BackendHTTP, err)
	}
	return notes, nil
}

func (g *HTTPGenerator) post(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error) {
	if primer == nil {
		primer = []models.NoteEvent{}
	}
	body, err := json.Marshal(continueRequest{
		Primer:          primer,
		Temperature:     ClampTemperature(opts.Temperature),
		WindowBeats:     opts.WindowBeats,
		Tempo:           opts.Tempo,
		Key:             opts.KeyLabel,
		BeatsPerMeasure: opts.BeatsPerMeasure,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/continue", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("continue request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("continuation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result continueResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("continuation service error: %s", result.Error)
	}

	notes := usableNotes(result.Notes, opts.WindowBeats)
	if len(notes) == 0 {
		return nil, errors.New("continuation service returned no usable notes")
	}
	return notes, nil
}
