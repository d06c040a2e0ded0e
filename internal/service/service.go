package service

import (
	"context"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LiveCache caches resolved public pages per site slug. Get reports the
// slug's generation; Set writes under it so invalidated writes stay unread.
type LiveCache interface {
	Get(ctx context.Context, siteSlug, path string) (*domain.LivePage, int64, error)
	Set(ctx context.Context, siteSlug, path string, generation int64, page *domain.LivePage) error
	InvalidateSite(ctx context.Context, siteSlug string) (int64, error)
}

// URLSigner turns an asset into a time-limited download URL
type URLSigner interface {
	SignedURL(ctx context.Context, asset *domain.Asset) (string, error)
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// loadSite loads a site and checks it belongs to workspaceID
func loadSite(ctx context.Context, sites domain.SiteRepository, workspaceID, siteID string) (*domain.Site, error) {
	site, err := sites.Get(ctx, siteID)
	if err != nil {
		return nil, domain.Infrastructure("failed to load site", err)
	}
	if site == nil || (workspaceID != "" && site.WorkspaceID != workspaceID) {
		return nil, domain.NotFound("site not found")
	}
	return site, nil
}

// loadPage loads a page and checks it belongs to siteID
func loadPage(ctx context.Context, pages domain.PageRepository, siteID, pageID string) (*domain.Page, error) {
	page, err := pages.Get(ctx, pageID)
	if err != nil {
		return nil, domain.Infrastructure("failed to load page", err)
	}
	if page == nil || page.SiteID != siteID {
		return nil, domain.NotFound("page not found")
	}
	return page, nil
}

// clampLimit applies the default when limit is unset and the hard ceiling otherwise
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return limit
}
