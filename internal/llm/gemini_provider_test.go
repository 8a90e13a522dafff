package llm

import (
	"context"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiProvider_Name(t *testing.T) {
	// We can't create a real client without an API key
	provider := &GeminiProvider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_BuildContents(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	contents := provider.buildGeminiContents([]map[string]any{
		{"role": "user", "content": "primer"},
		{"role": "developer", "content": "context"},
		{"role": "user"},
	})
	require.Len(t, contents, 2)
	for _, c := range contents {
		assert.Equal(t, "user", c.Role)
	}
}

func TestGeminiProvider_BuildConfig(t *testing.T) {
	provider := &GeminiProvider{client: nil}
	temp := 1.2

	config := provider.buildConfig(&GenerationRequest{
		SystemPrompt: "sys",
		Temperature:  &temp,
		OutputSchema: ContinuationOutputSchema(),
	})
	assert.Equal(t, "sys", config.SystemInstruction.Parts[0].Text)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 1.2, *config.Temperature, 1e-6)
	assert.Equal(t, "application/json", config.ResponseMIMEType)

	schema := config.ResponseSchema
	require.NotNil(t, schema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"description", "notes"}, schema.Required)

	item := schema.Properties["notes"].Items
	require.NotNil(t, item)
	pitch := item.Properties["midiNoteNumber"]
	assert.Equal(t, genai.TypeInteger, pitch.Type)
	require.NotNil(t, pitch.Maximum)
	assert.Equal(t, 127.0, *pitch.Maximum)
	assert.Equal(t, genai.TypeNumber, item.Properties["startBeats"].Type)
}

func TestGeminiProvider_ProcessResponse(t *testing.T) {
	provider := &GeminiProvider{client: nil}
	tx := sentry.StartTransaction(context.Background(), "test")
	defer tx.Finish()

	resp, err := provider.processGeminiResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "```json\n{\"notes\":[]}\n```"}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 10, CandidatesTokenCount: 4, TotalTokenCount: 14,
		},
	}, tx.StartTime, tx)
	require.NoError(t, err)
	assert.Equal(t, `{"notes":[]}`, resp.RawOutput)
	assert.Equal(t, TokenUsage{InputTokens: 10, OutputTokens: 4, TotalTokens: 14}, resp.Usage)

	_, err = provider.processGeminiResponse(&genai.GenerateContentResponse{}, tx.StartTime, tx)
	assert.Error(t, err)
}
