package handler

import (
	"net/http"
	"strconv"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/go-chi/chi/v5"
)

// PageHandler handles the authoring endpoints of a single page
type PageHandler struct {
	checks  *service.PrePublishService
	publish *service.PublishService
	history *service.HistoryService
	drafts  *service.DraftService
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	checks *service.PrePublishService,
	publish *service.PublishService,
	history *service.HistoryService,
	drafts *service.DraftService,
) *PageHandler {
	return &PageHandler{
		checks:  checks,
		publish: publish,
		history: history,
		drafts:  drafts,
	}
}

// RollbackRequest selects the snapshot to republish
type RollbackRequest struct {
	VersionID string `json:"versionId" validate:"required,max=200"`
}

type historyQuery struct {
	Limit int `validate:"gte=0"`
}

// Checks handles running the pre-publish checklist
func (h *PageHandler) Checks(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	report, err := h.checks.Check(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, report)
}

// Publish handles publishing the current draft
func (h *PageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	snapshot, err := h.publish.Publish(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"ok":       true,
		"snapshot": snapshot,
	})
}

// Rollback handles republishing an earlier snapshot
func (h *PageHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req RollbackRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	snapshot, err := h.publish.Rollback(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"), req.VersionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"ok":       true,
		"snapshot": snapshot,
	})
}

// History handles listing the published versions of a page
func (h *PageHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var q historyQuery
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "limit must be an integer")
			return
		}
		q.Limit = limit
	}
	if err := validate.Struct(q); err != nil {
		response.BadRequest(w, "limit must not be negative")
		return
	}

	history, err := h.history.List(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"), q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"ok":       true,
		"page":     history.Page,
		"versions": history.Versions,
	})
}

// SaveDraft handles replacing the draft content of a page
func (h *PageHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var input domain.DraftUpdate
	if err := decodeJSON(r, &input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	page, err := h.drafts.Save(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, page)
}

// Preview handles reading the draft content of a page
func (h *PageHandler) Preview(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	page, err := h.drafts.Preview(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "pageID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, page)
}
