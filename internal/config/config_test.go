package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ARTIFACT_DIR", "DATABASE_URL", "AUTH_MODE",
		"CORS_ALLOWED_ORIGINS", "CONTINUATION_BACKEND", "CONTINUATION_MODEL", "CONTINUATION_API_KEY",
		"CONTINUATION_TIMEOUT_SECONDS", "SCORE_COMPOSER", "DEFAULT_SEED", "LANGFUSE_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./artifacts", cfg.ArtifactDir)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "none", cfg.ContinuationBackend)
	assert.Equal(t, "gpt-5-mini", cfg.ContinuationModel)
	assert.Equal(t, 60*time.Second, cfg.ContinuationTimeout)
	assert.Empty(t, cfg.ContinuationAPIKey)
	assert.Equal(t, "SoundWave Studios", cfg.Composer)
	assert.Zero(t, cfg.DefaultSeed)
	assert.False(t, cfg.LangfuseEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_MODE", "gateway")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CONTINUATION_BACKEND", "Gemini")
	t.Setenv("CONTINUATION_MODEL", "")
	t.Setenv("CONTINUATION_TIMEOUT_SECONDS", "5")
	t.Setenv("CONTINUATION_API_KEY", "k-123")
	t.Setenv("DEFAULT_SEED", "42")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.IsGatewayMode())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "gemini", cfg.ContinuationBackend)
	assert.Equal(t, "gemini-2.5-flash", cfg.ContinuationModel)
	assert.Equal(t, 5*time.Second, cfg.ContinuationTimeout)
	assert.Equal(t, "k-123", cfg.ContinuationAPIKey)
	assert.Equal(t, int64(42), cfg.DefaultSeed)
}

func TestLoadIgnoresBadNumbers(t *testing.T) {
	t.Setenv("CONTINUATION_TIMEOUT_SECONDS", "soon")
	t.Setenv("DEFAULT_SEED", "x")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.ContinuationTimeout)
	assert.Zero(t, cfg.DefaultSeed)
}
