package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/sitepublish/internal/api"
	"github.com/Rrens/sitepublish/internal/config"
	"github.com/Rrens/sitepublish/internal/logging"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/Rrens/sitepublish/internal/repository"
	"github.com/Rrens/sitepublish/internal/repository/redis"
	"github.com/Rrens/sitepublish/internal/security"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/Rrens/sitepublish/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal().Msg("auth.jwt_secret is required")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting sitepublish API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize document store
	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open document store")
	}
	defer store.Close()

	var serverMetrics *metrics.ServerMetrics
	if cfg.Metrics.Enabled {
		serverMetrics = metrics.New()
	}

	deps := api.Deps{
		Store:    store,
		Verifier: security.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		URLs:     service.NewHTTPURLChecker(cfg.Publish.URLCheckTimeout),
		Metrics:  serverMetrics,
	}

	// Initialize Redis. Without it the live cache and per-user limits are disabled.
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Redis unavailable, continuing without live cache")
		} else {
			defer redisClient.Close()
			deps.Cache = redis.NewLiveCache(redisClient, cfg.Live.CacheTTL)
			deps.Limiter = redis.NewRateLimiter(
				redisClient,
				cfg.Security.RateLimit.RequestsPerMinute,
				cfg.Security.RateLimit.Burst,
			)
		}
	}

	// Initialize asset URL signer
	switch cfg.Assets.Signer {
	case "s3":
		signer, err := storage.NewS3Signer(ctx, cfg.Assets)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 signer")
		}
		deps.Signer = signer
	default:
		deps.Signer = storage.NewTokenSigner(cfg.Assets.BaseURL)
	}

	// Initialize router
	router := api.NewRouter(ctx, cfg, deps)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
