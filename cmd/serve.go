package cmd

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/orchestra-api/internal/api"
	"github.com/Conceptual-Machines/orchestra-api/internal/config"
	"github.com/Conceptual-Machines/orchestra-api/internal/continuation"
	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	"github.com/Conceptual-Machines/orchestra-api/internal/metrics"
	"github.com/Conceptual-Machines/orchestra-api/internal/observability"
	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const sentryFlushTimeout = 2 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API and web page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig()

	if initSentry(cfg) {
		defer sentry.Flush(sentryFlushTimeout)
	}

	lf := observability.InitializeLangfuse(ctx, cfg)
	if lf != nil {
		defer lf.Flush()
	}

	cw, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics disabled: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	composer, err := newComposer(ctx, cfg, store, cw, metrics.NewSentryMetrics())
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(cfg, composer, store, cw, version)

	log.Printf("🚀 Starting server on port %s (continuation: %s)", cfg.Port, composer.ContinuationBackend())
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		return err
	}
	return nil
}

func loadConfig() *config.Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return config.Load()
}

func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "orchestra-api@" + version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		EnableLogs:       true,
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	})
	if err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
		return false
	}
	log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, version)
	return true
}

// openStore uses Postgres when DATABASE_URL is set, memory otherwise
func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Println("⚠️  DATABASE_URL not set, composition records are kept in memory")
		return database.NewMemoryStore(), nil
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return database.NewGormStore(db), nil
}

func newComposer(
	ctx context.Context,
	cfg *config.Config,
	store database.Store,
	cw *metrics.Client,
	sm *metrics.SentryMetrics,
) (*services.Composer, error) {
	var tokens continuation.TokenRecorder
	if cw != nil {
		tokens = cw
	}
	gen, err := continuation.New(ctx, cfg, tokens)
	if err != nil {
		return nil, err
	}
	return services.NewComposer(store, gen, services.ComposerOptions{
		ArtifactDir:         cfg.ArtifactDir,
		Composer:            cfg.Composer,
		DefaultSeed:         cfg.DefaultSeed,
		ContinuationTimeout: cfg.ContinuationTimeout,
		CloudWatch:          cw,
		Sentry:              sm,
	}), nil
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
