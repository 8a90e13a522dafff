package continuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/llm"
	"github.com/Conceptual-Machines/orchestra-api/internal/logger"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"github.com/Conceptual-Machines/orchestra-api/internal/observability"
	"github.com/Conceptual-Machines/orchestra-api/internal/prompt"
)

// TokenRecorder receives token usage of LLM calls
type TokenRecorder interface {
	RecordTokenUsage(model string, inputTokens, outputTokens int64)
}

// LLMGenerator continues melodies with a chat model through structured
// JSON output
type LLMGenerator struct {
	provider llm.Provider
	model    string
	prompts  *prompt.Builder
	tracer   *observability.LangfuseClient
	tokens   TokenRecorder
}

// NewLLMGenerator creates a generator backed by provider. tokens may be nil.
func NewLLMGenerator(provider llm.Provider, model string, tokens TokenRecorder) *LLMGenerator {
	return &LLMGenerator{
		provider: provider,
		model:    model,
		prompts:  prompt.NewPromptBuilder(),
		tracer:   observability.GetClient(),
		tokens:   tokens,
	}
}

func (g *LLMGenerator) Name() string {
	return g.provider.Name()
}

func (g *LLMGenerator) Continue(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error) {
	start := time.Now()
	notes, err := g.continueMelody(ctx, primer, opts)
	logger.LogContinuation(ctx, g.Name(), time.Since(start), len(notes), err)
	if err != nil {
		return nil, apperrors.NewGenerationError(g.Name(), err)
	}
	return notes, nil
}

func (g *LLMGenerator) continueMelody(ctx context.Context, primer []models.NoteEvent, opts Options) ([]models.NoteEvent, error) {
	system, err := g.prompts.BuildSystemPrompt()
	if err != nil {
		return nil, err
	}
	input, err := g.prompts.BuildInput(prompt.ContinuationContext{
		Key:             opts.KeyLabel,
		Tempo:           opts.Tempo,
		BeatsPerMeasure: opts.BeatsPerMeasure,
		WindowBeats:     opts.WindowBeats,
		Primer:          primer,
	})
	if err != nil {
		return nil, err
	}

	trace := g.tracer.StartTrace(ctx, "melody-continuation", map[string]interface{}{
		"provider":     g.provider.Name(),
		"window_beats": opts.WindowBeats,
		"primer_notes": len(primer),
	})
	defer trace.Finish()
	gen := trace.Generation("continue", g.model, input)

	temp := ClampTemperature(opts.Temperature)
	resp, err := g.provider.Generate(ctx, &llm.GenerationRequest{
		Model:        g.model,
		InputArray:   input,
		SystemPrompt: system,
		Temperature:  &temp,
		OutputSchema: llm.ContinuationOutputSchema(),
	})
	if err != nil {
		gen.End("", 0, 0, err)
		return nil, err
	}
	gen.End(resp.RawOutput, resp.Usage.InputTokens, resp.Usage.OutputTokens, nil)
	if g.tokens != nil {
		g.tokens.RecordTokenUsage(g.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	var out models.ContinuationOutput
	if err := json.Unmarshal([]byte(resp.RawOutput), &out); err != nil {
		return nil, fmt.Errorf("failed to parse continuation output: %w", err)
	}
	notes := usableNotes(out.Notes, opts.WindowBeats)
	if len(notes) == 0 {
		return nil, errors.New("continuation returned no usable notes")
	}
	return notes, nil
}
