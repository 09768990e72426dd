package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie-explorer/internal/config"
	"movie-explorer/internal/genre"
	"movie-explorer/internal/handler"
	"movie-explorer/internal/middleware"
	"movie-explorer/internal/repository"
	"movie-explorer/internal/service"
	"movie-explorer/internal/view"
	"movie-explorer/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	// Load configuration
	cfg := config.Load()
	log.Info().
		Str("port", cfg.Port).
		Str("mode", cfg.GinMode).
		Str("language", cfg.Language).
		Msg("🚀 Starting movie-explorer")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Initialize metrics, optional
	var (
		metrics   *repository.Metrics
		recorder  middleware.RequestRecorder
		errorsRec handler.ErrorRecorder
		analytics handler.Analytics
	)
	if cfg.AnalyticsEnabled() {
		m, err := repository.NewMetrics(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  Analytics disabled, Redis unavailable")
		} else {
			metrics = m
			defer metrics.Close()
			metrics.RecordServerStart(context.Background())
			recorder, errorsRec, analytics = metrics, metrics, metrics
			log.Info().Msg("📊 Metrics enabled")
		}
	}

	// Initialize the catalog client
	httpClient := httpclient.NewClient(cfg.HTTPTimeout)
	tmdbService := service.NewTMDBService(httpClient, service.TMDBOptions{
		APIKeys:         cfg.TMDBAPIKeys,
		BaseURL:         cfg.TMDBBaseURL,
		Language:        cfg.Language,
		ReviewsLanguage: cfg.ReviewsLanguage,
	})
	log.Info().Int("keys", tmdbService.KeyCount()).Dur("timeout", httpClient.Timeout()).Msg("🎬 TMDB service enabled")

	// Genre names are loaded once; without them the list still works, unlabeled
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	genres, err := genre.Load(ctx, tmdbService)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Could not load genres, continuing without them")
		genres = genre.NewDirectory(nil)
	} else {
		log.Info().Int("count", genres.Len()).Msg("🏷️  Genres loaded")
	}

	tmpl, err := view.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Initialize handlers
	pageHandler := handler.NewPageHandler(tmdbService, genres, view.NewRenderer(cfg.TMDBImageBase, genres), errorsRec)
	apiHandler := handler.NewAPIHandler(tmdbService, genres, errorsRec)
	adminHandler := handler.NewAdminHandler(tmdbService, genres, analytics)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.CORS())
	r.SetHTMLTemplate(tmpl)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Pages
	r.GET("/", pageHandler.List)
	r.GET("/movie/:id", pageHandler.Detail)
	r.GET("/movie/:id/reviews", pageHandler.Reviews)
	r.NoRoute(pageHandler.NotFound)

	// API routes, public
	api := r.Group("/api/v1")
	{
		api.GET("/status", adminHandler.GetStatus)
		api.GET("/movies", apiHandler.GetMovies)
		api.GET("/genres", apiHandler.GetGenres)
		api.GET("/movie/:id", apiHandler.GetMovie)
		api.GET("/movie/:id/reviews", apiHandler.GetReviews)
	}

	// Admin routes, authenticated when ADMIN_API_KEY is set
	admin := r.Group("/api/v1")
	admin.Use(middleware.AdminAuth(cfg.AdminAPIKey))
	{
		admin.GET("/analytics", adminHandler.GetAnalytics)
		admin.GET("/analytics/route", adminHandler.GetRouteStats)
		admin.DELETE("/analytics", adminHandler.ResetAnalytics)
	}

	if cfg.AdminAPIKey != "" {
		log.Info().Msg("🔐 Admin API authentication enabled")
	} else {
		log.Warn().Msg("⚠️  Admin API has no authentication, analytics endpoints are open")
	}

	// Create HTTP server with graceful shutdown support
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("🌐 Server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("👋 Server exited")
}
