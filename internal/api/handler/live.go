package handler

import (
	"net/http"
	"time"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// LiveHandler serves published content to unauthenticated traffic. Every
// failure is answered with 404 so that missing content and internal errors
// look the same from outside.
type LiveHandler struct {
	live   *service.LiveService
	maxAge time.Duration
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(live *service.LiveService, maxAge time.Duration) *LiveHandler {
	return &LiveHandler{live: live, maxAge: maxAge}
}

// Page handles resolving a published page by site slug and path
func (h *LiveHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "siteSlug")

	page, err := h.live.ResolvePage(r.Context(), slug, chi.URLParam(r, "*"))
	if err != nil {
		log.Error().Err(err).Str("site_slug", slug).Msg("Live page resolution failed")
	}
	if err != nil || page == nil {
		h.notFound(w)
		return
	}

	response.Public(w, h.maxAge)
	response.OK(w, page)
}

// Media handles redirecting an asset reference to its signed download URL
func (h *LiveHandler) Media(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "siteSlug")

	url, err := h.live.ResolveAsset(r.Context(), slug, chi.URLParam(r, "*"))
	if err != nil {
		log.Error().Err(err).Str("site_slug", slug).Msg("Live asset resolution failed")
	}
	if err != nil || url == "" {
		h.notFound(w)
		return
	}

	response.Public(w, h.maxAge)
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *LiveHandler) notFound(w http.ResponseWriter) {
	response.NoStore(w)
	response.NotFound(w, "not found")
}
