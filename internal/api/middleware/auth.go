package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/Rrens/sitepublish/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	CallerKey      contextKey = "caller"
	WorkspaceIDKey contextKey = "workspaceID"
)

// TokenVerifier resolves a bearer token to a caller
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Caller, error)
}

// AuthMiddleware handles bearer authentication
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate validates the bearer token and stores the caller in the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		token, ok := security.BearerToken(authHeader)
		if !ok {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		caller, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), CallerKey, *caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCaller gets the authenticated caller from context
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(domain.Caller)
	return caller, ok && caller.UserID != ""
}

// GetWorkspaceID gets the workspace ID from context
func GetWorkspaceID(ctx context.Context) (string, bool) {
	workspaceID, ok := ctx.Value(WorkspaceIDKey).(string)
	return workspaceID, ok && workspaceID != ""
}

// WorkspaceContext extracts workspace ID from URL and adds to context
func WorkspaceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID := chi.URLParam(r, "workspaceID")
		if workspaceID == "" || len(workspaceID) > 200 {
			response.BadRequest(w, "invalid workspace ID")
			return
		}

		ctx := context.WithValue(r.Context(), WorkspaceIDKey, workspaceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Limiter is a per-key request budget
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter Limiter
	metrics     *metrics.ServerMetrics
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter Limiter, m *metrics.ServerMetrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter, metrics: m}
}

// Limit applies rate limiting based on the caller's user ID
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := GetCaller(r.Context())
		if !ok {
			response.Unauthorized(w, "unauthorized")
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), caller.UserID)
		if err != nil {
			// fail open
			log.Warn().Err(err).Str("user_id", caller.UserID).Msg("Rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.UTC().Format(time.RFC3339))

		if !allowed {
			m.metrics.IncRateLimitDenied("user")
			response.TooManyRequests(w, time.Until(resetTime), "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
