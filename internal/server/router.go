// Package server exposes the card store and generator over a local HTTP API
// for an extension front end.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/rcliao/flashcards/internal/logging"
)

// Store is everything the API needs from storage.
type Store interface {
	Pinger
	CardStore
	SettingsStore
	PendingStore
}

// RouterConfig holds the router dependencies.
type RouterConfig struct {
	Store          Store
	Generator      Generator
	Logger         *slog.Logger
	AllowedOrigins []string
	Version        string
}

// NewRouter registers every route on a new gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := logging.Default(cfg.Logger).With("component", "server")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	health := NewHealthController(cfg.Store, cfg.Version)
	cards := NewCardsController(cfg.Store, logger)
	settings := NewSettingsController(cfg.Store, logger)
	gen := NewGenerateController(cfg.Generator, cfg.Store, logger)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.POST("/generate", gen.Generate)

		api.GET("/cards", cards.List)
		api.GET("/cards/:id", cards.Get)
		api.PUT("/cards/:id", cards.Update)
		api.DELETE("/cards/:id", cards.Delete)
		api.GET("/export", cards.Export)

		api.GET("/settings", settings.Get)
		api.PUT("/settings/:key", settings.Set)

		api.GET("/pending", gen.ListPending)
		api.POST("/pending/:id/retry", gen.Retry)
		api.DELETE("/pending/:id", gen.Dismiss)
	}

	return router
}

// Handler wraps the router with CORS for the allowed origins.
func Handler(cfg RouterConfig) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin"},
		MaxAge:         86400,
	}).Handler(NewRouter(cfg))
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	logger = logging.Default(logger).With("component", "server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
