package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records request and pipeline metrics as Sentry spans
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordComposition tags the request transaction with the pipeline result
// and adds a span for it
func (m *SentryMetrics) RecordComposition(ctx context.Context, form string, parts, measures int, duration time.Duration, continuationUsed bool) {
	if m == nil || !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("composition.form", form)
		transaction.SetTag("composition.continuation_used", fmt.Sprintf("%t", continuationUsed))
		transaction.SetData("composition.parts", parts)
		transaction.SetData("composition.measures", measures)
	}

	span := sentry.StartSpan(ctx, "composition.pipeline")
	defer span.Finish()

	span.SetTag("form", form)
	span.SetData("parts", parts)
	span.SetData("measures", measures)
	span.SetData("duration_ms", duration.Milliseconds())
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Composition: %s", form)
}

// RecordContinuationFallback records that a section was generated locally
// after the continuation backend failed
func (m *SentryMetrics) RecordContinuationFallback(ctx context.Context, backend, section string, cause error) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "continuation.fallback")
	defer span.Finish()

	span.SetTag("backend", backend)
	span.SetTag("section", section)
	if cause != nil {
		span.SetData("error", cause.Error())
	}
	span.Status = sentry.SpanStatusUnavailable
	span.Description = fmt.Sprintf("Continuation fallback: %s", backend)
}

// RecordTokenUsage records LLM token usage on the current transaction
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int64) {
	if m == nil || !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)
	span.SetData("total_tokens", inputTokens+outputTokens)
	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}
