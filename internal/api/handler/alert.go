package handler

import (
	"net/http"
	"strconv"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/go-chi/chi/v5"
)

// AlertHandler handles workspace alert endpoints
type AlertHandler struct {
	alerts *service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// List handles listing and filtering workspace alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.AlertFilter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		SiteID:   q.Get("siteId"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}

	list, err := h.alerts.List(r.Context(), caller, workspaceID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"ok":    true,
		"rows":  list.Rows,
		"count": list.Count,
	})
}

// Resolve handles resolving an alert
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	alert, err := h.alerts.Resolve(r.Context(), caller, workspaceID, chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, alert)
}
