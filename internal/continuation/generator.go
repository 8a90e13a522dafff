package continuation

import (
	"context"

	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

const (
	BackendNone   = "none"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
	BackendHTTP   = "http"

	// MaxTemperature is the upper bound accepted by every backend
	MaxTemperature = 1.5
)

// Options controls a single continuation request
type Options struct {
	Temperature float64
	// WindowBeats is the length of the requested continuation
	WindowBeats float64
	// Tempo in quarter notes per minute, for backends that reason in seconds
	Tempo int
	// KeyLabel is informational context for LLM backends
	KeyLabel string
	// BeatsPerMeasure is informational context for LLM backends
	BeatsPerMeasure int
}

// Generator continues a primed note sequence. The primer may be empty.
// Returned note starts are relative to the end of the primer, so a
// well-behaved backend returns starts in [0, WindowBeats).
type Generator interface {
	Continue(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error)
	Name() string
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error)

func (f GeneratorFunc) Continue(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error) {
	return f(ctx, primer, opts)
}

func (f GeneratorFunc) Name() string {
	return "func"
}

// ClampTemperature keeps a temperature inside [0, MaxTemperature]
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// usableNotes drops notes that fall outside [0, window) or cannot be
// played. Order is kept.
func usableNotes(notes []models.NoteEvent, window float64) []models.NoteEvent {
	out := make([]models.NoteEvent, 0, len(notes))
	for _, n := range notes {
		if n.MidiNoteNumber < 0 || n.MidiNoteNumber > 127 {
			continue
		}
		if n.DurationBeats <= 0 || n.StartBeats < 0 {
			continue
		}
		if window > 0 && n.StartBeats >= window {
			continue
		}
		out = append(out, n)
	}
	return out
}
