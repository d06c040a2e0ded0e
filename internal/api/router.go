package api

import (
	"context"
	"net/http"

	"github.com/Rrens/sitepublish/internal/api/handler"
	customMiddleware "github.com/Rrens/sitepublish/internal/api/middleware"
	"github.com/Rrens/sitepublish/internal/config"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/Rrens/sitepublish/internal/ratelimit"
	"github.com/Rrens/sitepublish/internal/repository/document"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Deps are the infrastructure components the router wires services onto
type Deps struct {
	Store    domain.DocumentStore
	Verifier customMiddleware.TokenVerifier
	Signer   service.URLSigner
	// Optional; nil disables the feature
	Cache   service.LiveCache
	Limiter customMiddleware.Limiter
	URLs    service.URLChecker
	Metrics *metrics.ServerMetrics
}

// NewRouter creates and configures the HTTP router. ctx bounds background
// goroutines started for the router.
func NewRouter(ctx context.Context, cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	if deps.Metrics != nil && cfg.Metrics.Enabled {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	// Initialize repositories
	workspaceRepo := document.NewWorkspaceRepository(deps.Store)
	siteRepo := document.NewSiteRepository(deps.Store)
	pageRepo := document.NewPageRepository(deps.Store)
	snapshotRepo := document.NewSnapshotRepository(deps.Store)
	assetRepo := document.NewAssetRepository(deps.Store)
	alertRepo := document.NewAlertRepository(deps.Store)
	auditRepo := document.NewAuditLogRepository(deps.Store)

	// Initialize services
	accessService := service.NewAccessService(workspaceRepo)
	auditService := service.NewAuditService(auditRepo, deps.Metrics)
	alertService := service.NewAlertService(
		accessService,
		alertRepo,
		auditService,
		cfg.Publish.AlertDefaultLimit,
		cfg.Publish.AlertMaxLimit,
	)
	checkService := service.NewPrePublishService(accessService, siteRepo, pageRepo, assetRepo, deps.URLs, deps.Metrics)
	publishService := service.NewPublishService(service.PublishDeps{
		Access:     accessService,
		Sites:      siteRepo,
		Pages:      pageRepo,
		Snapshots:  snapshotRepo,
		Checks:     checkService,
		Alerts:     alertService,
		Audit:      auditService,
		Cache:      deps.Cache,
		Metrics:    deps.Metrics,
		Optimistic: cfg.Publish.Optimistic,
	})
	historyService := service.NewHistoryService(
		accessService,
		siteRepo,
		pageRepo,
		snapshotRepo,
		cfg.Publish.HistoryDefaultLimit,
		cfg.Publish.HistoryMaxLimit,
	)
	draftService := service.NewDraftService(accessService, siteRepo, pageRepo, auditService)
	assetService := service.NewAssetService(accessService, siteRepo, pageRepo, assetRepo, auditService, cfg.Publish.UsageScanTimeout)
	liveService := service.NewLiveService(siteRepo, pageRepo, snapshotRepo, assetRepo, deps.Cache, deps.Signer, deps.Metrics)

	// Initialize handlers
	pageHandler := handler.NewPageHandler(checkService, publishService, historyService, draftService)
	alertHandler := handler.NewAlertHandler(alertService)
	assetHandler := handler.NewAssetHandler(assetService)
	liveHandler := handler.NewLiveHandler(liveService, cfg.Live.MaxAge)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(deps.Verifier)

	// Public per-IP limiter
	ipLimiter := ratelimit.New(ctx,
		ratelimit.WithRate(cfg.Live.RateLimit.PerSecond, cfg.Live.RateLimit.Burst),
		ratelimit.WithTTL(cfg.Live.RateLimit.TTL),
		ratelimit.WithOnFirstDenied(func(ip string) {
			log.Warn().Str("client_ip", ip).Msg("Public rate limit exceeded")
		}),
		ratelimit.WithOnDenied(func(string) {
			deps.Metrics.IncRateLimitDenied("ip")
		}),
	)

	if deps.Metrics != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	// Public live routes
	r.Group(func(r chi.Router) {
		r.Use(ipLimiter.Middleware)

		r.Get("/live/{siteSlug}", liveHandler.Page)
		r.Get("/live/{siteSlug}/*", liveHandler.Page)
		r.Get("/media/{siteSlug}/*", liveHandler.Media)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Store))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if deps.Limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.Limiter, deps.Metrics).Limit)
			}

			r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
				r.Use(customMiddleware.WorkspaceContext)

				r.Get("/alerts", alertHandler.List)
				r.Post("/alerts/{alertID}/resolve", alertHandler.Resolve)
				r.Get("/assets/{assetID}/usages", assetHandler.Usages)

				r.Route("/sites/{siteID}", func(r chi.Router) {
					r.Delete("/assets/{assetID}", assetHandler.Delete)

					r.Route("/pages/{pageID}", func(r chi.Router) {
						r.Put("/draft", pageHandler.SaveDraft)
						r.Get("/preview", pageHandler.Preview)
						r.Post("/checks", pageHandler.Checks)
						r.Post("/publish", pageHandler.Publish)
						r.Post("/rollback", pageHandler.Rollback)
						r.Get("/history", pageHandler.History)
					})
				})
			})
		})
	})

	return r
}
