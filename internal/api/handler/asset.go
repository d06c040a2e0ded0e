package handler

import (
	"net/http"

	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/service"
	"github.com/go-chi/chi/v5"
)

// AssetHandler handles asset usage and deletion endpoints
type AssetHandler struct {
	assets *service.AssetService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assets *service.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// Usages handles listing where an asset is referenced in the workspace
func (h *AssetHandler) Usages(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	usages, err := h.assets.Usages(r.Context(), caller, workspaceID, chi.URLParam(r, "assetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.OK(w, map[string]any{
		"ok":    true,
		"rows":  usages,
		"count": len(usages),
	})
}

// Delete handles deleting an unreferenced asset
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	err := h.assets.Delete(r.Context(), caller, workspaceID, chi.URLParam(r, "siteID"), chi.URLParam(r, "assetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}
