package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/orchestra-api/internal/models"
)

const (
	roleUser      = "user"
	roleDeveloper = "developer"
)

// Builder builds prompts for the continuation backends
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// ContinuationContext is the musical context sent along with a primer
type ContinuationContext struct {
	Key             string
	Tempo           int
	BeatsPerMeasure int
	WindowBeats     float64
	Primer          []models.NoteEvent
}

// BuildSystemPrompt returns the continuation system prompt
func (b *Builder) BuildSystemPrompt() (string, error) {
	return b.loader.GetContinuationSystemPrompt()
}

// BuildInput returns the input messages for a continuation request: a
// developer message with the musical context, then the primer as JSON in
// a user message.
func (b *Builder) BuildInput(c ContinuationContext) ([]map[string]any, error) {
	if c.WindowBeats <= 0 {
		return nil, fmt.Errorf("continuation window must be positive, got %v", c.WindowBeats)
	}

	var ctx strings.Builder
	ctx.WriteString("Musical context:\n")
	if c.Key != "" {
		fmt.Fprintf(&ctx, "- key: %s\n", c.Key)
	}
	if c.Tempo > 0 {
		fmt.Fprintf(&ctx, "- tempo: %d bpm\n", c.Tempo)
	}
	if c.BeatsPerMeasure > 0 {
		fmt.Fprintf(&ctx, "- beats per measure: %d\n", c.BeatsPerMeasure)
	}
	fmt.Fprintf(&ctx, "- continuation window: %g beats\n", c.WindowBeats)

	primer := c.Primer
	if primer == nil {
		primer = []models.NoteEvent{}
	}
	data, err := json.Marshal(map[string]any{"primer": primer})
	if err != nil {
		return nil, fmt.Errorf("failed to encode primer: %w", err)
	}

	user := "Continue this melody:\n" + string(data)
	if len(c.Primer) == 0 {
		user = "There is no primer. Start a new melody.\n" + string(data)
	}

	return []map[string]any{
		{"role": roleDeveloper, "content": ctx.String()},
		{"role": roleUser, "content": user},
	}, nil
}
