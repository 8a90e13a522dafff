package continuation

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/orchestra-api/internal/config"
	"github.com/Conceptual-Machines/orchestra-api/internal/llm"
)

// New builds the generator selected by CONTINUATION_BACKEND. It returns
// nil for "none", which makes every section generate locally.
func New(ctx context.Context, cfg *config.Config, tokens TokenRecorder) (Generator, error) {
	switch cfg.ContinuationBackend {
	case "", BackendNone:
		return nil, nil
	case BackendOpenAI, BackendGemini:
		provider, err := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey).
			GetProvider(ctx, cfg.ContinuationModel, cfg.ContinuationBackend)
		if err != nil {
			return nil, fmt.Errorf("continuation backend %s: %w", cfg.ContinuationBackend, err)
		}
		return NewLLMGenerator(provider, cfg.ContinuationModel, tokens), nil
	case BackendHTTP:
		if cfg.ContinuationURL == "" {
			return nil, fmt.Errorf("continuation backend http: CONTINUATION_URL is not set")
		}
		return NewHTTPGenerator(cfg.ContinuationURL, cfg.ContinuationAPIKey, cfg.ContinuationTimeout), nil
	default:
		return nil, fmt.Errorf("unknown continuation backend: %s (allowed: none, openai, gemini, http)", cfg.ContinuationBackend)
	}
}
