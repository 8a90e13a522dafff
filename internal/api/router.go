package api

import (
	"github.com/Conceptual-Machines/orchestra-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/orchestra-api/internal/api/middleware"
	"github.com/Conceptual-Machines/orchestra-api/internal/config"
	"github.com/Conceptual-Machines/orchestra-api/internal/database"
	"github.com/Conceptual-Machines/orchestra-api/internal/metrics"
	"github.com/Conceptual-Machines/orchestra-api/internal/middleware"
	"github.com/Conceptual-Machines/orchestra-api/internal/services"
	webhandlers "github.com/Conceptual-Machines/orchestra-api/internal/web/handlers"
	"github.com/gin-gonic/gin"
)

func SetupRouter(
	cfg *config.Config,
	composer *services.Composer,
	store database.Store,
	cw *metrics.Client,
	version string,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cw))

	router.Use(apimiddleware.CORS(cfg.CORSAllowedOrigins))

	healthHandler := handlers.NewHealthHandler(store, composer.ContinuationBackend())
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(version, composer.ContinuationBackend(), store)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	compositionHandler := handlers.NewCompositionHandler(composer)

	// Web page and its one-click endpoint
	webHandler := webhandlers.NewWebHandler(version)
	router.GET("/", webHandler.Home)
	router.GET("/generate", authMiddleware(cfg), compositionHandler.Generate)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		v1.POST("/compositions", compositionHandler.Create)
		// "latest" is accepted as an id
		v1.GET("/compositions/:id/download", compositionHandler.Download)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch cfg.AuthMode {
	case config.AuthModeGateway:
		return apimiddleware.GatewayAuth()
	case config.AuthModeJWT:
		return middleware.JWTAuth(cfg)
	default:
		return apimiddleware.NoAuth()
	}
}
