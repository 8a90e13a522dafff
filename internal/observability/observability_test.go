package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/Conceptual-Machines/orchestra-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.00025+0.002, CalculateCost("gpt-5-mini", 1000, 1000), 1e-12)
	assert.InDelta(t, 0.0003*2, CalculateCost("gemini-2.5-flash", 2000, 0), 1e-12)
	// unknown models fall back to gpt-5-mini
	assert.Equal(t, CalculateCost("gpt-5-mini", 500, 700), CalculateCost("mystery", 500, 700))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.002250", FormatCost(0.00225))
}

func TestDisabledLangfuseIsNoop(t *testing.T) {
	client := InitializeLangfuse(context.Background(), &config.Config{LangfuseEnabled: false})
	assert.False(t, client.IsEnabled())
	assert.Same(t, client, GetClient())

	trace := client.StartTrace(context.Background(), "continuation", nil)
	gen := trace.Generation("continue", "gpt-5-mini", "primer")
	gen.End("", 10, 10, errors.New("boom"))
	trace.Finish()
}
