package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"

	defaultOpenAIModel = "gpt-5-mini"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// Storage
	ArtifactDir string
	DatabaseURL string // empty keeps composition records in memory

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Verify HS256 bearer tokens with JWTSecret
	AuthMode  string
	JWTSecret string

	CORSAllowedOrigins []string

	// Continuation backend: none, openai, gemini or http
	ContinuationBackend string
	ContinuationModel   string
	ContinuationURL     string
	ContinuationAPIKey  string // sent as a bearer token to the http backend
	ContinuationTimeout time.Duration

	// LLM API Keys
	OpenAIAPIKey string
	GeminiAPIKey string

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool

	// Score defaults
	Composer    string
	DefaultSeed int64 // 0 seeds from the clock
}

func Load() *Config {
	backend := strings.ToLower(getEnv("CONTINUATION_BACKEND", "none"))
	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Port:                getEnv("PORT", "8080"),
		ArtifactDir:         getEnv("ARTIFACT_DIR", "./artifacts"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		AuthMode:            getEnv("AUTH_MODE", AuthModeNone),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ContinuationBackend: backend,
		ContinuationModel:   getEnv("CONTINUATION_MODEL", defaultModel(backend)),
		ContinuationURL:     getEnv("CONTINUATION_URL", ""),
		ContinuationAPIKey:  getEnv("CONTINUATION_API_KEY", ""),
		ContinuationTimeout: time.Duration(getEnvInt("CONTINUATION_TIMEOUT_SECONDS", 60)) * time.Second,
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		LangfusePublicKey:   getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey:   getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:        getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:     getEnv("LANGFUSE_ENABLED", "false") == "true",
		Composer:            getEnv("SCORE_COMPOSER", "SoundWave Studios"),
		DefaultSeed:         int64(getEnvInt("DEFAULT_SEED", 0)),
	}
}

func defaultModel(backend string) string {
	if backend == "gemini" {
		return defaultGeminiModel
	}
	return defaultOpenAIModel
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsProduction reports whether production-only integrations should run
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
