package service

import (
	"context"
	"strings"

	"github.com/Rrens/sitepublish/internal/assetref"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/rs/zerolog/log"
)

// LiveService resolves public requests to published content. It never writes
// to the document store and never reads draft fields.
type LiveService struct {
	sites     domain.SiteRepository
	pages     domain.PageRepository
	snapshots domain.SnapshotRepository
	assets    domain.AssetRepository
	cache     LiveCache
	signer    URLSigner
	metrics   *metrics.ServerMetrics
}

// NewLiveService creates a new live service. cache may be nil.
func NewLiveService(
	sites domain.SiteRepository,
	pages domain.PageRepository,
	snapshots domain.SnapshotRepository,
	assets domain.AssetRepository,
	cache LiveCache,
	signer URLSigner,
	m *metrics.ServerMetrics,
) *LiveService {
	return &LiveService{
		sites:     sites,
		pages:     pages,
		snapshots: snapshots,
		assets:    assets,
		cache:     cache,
		signer:    signer,
		metrics:   m,
	}
}

// NormalizePath joins path segments into the canonical form used for page
// lookups: no leading or trailing slash, "" for the root. ok is false for
// paths containing traversal or control sequences.
func NormalizePath(segments ...string) (string, bool) {
	var parts []string
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if p == "." || p == ".." || strings.ContainsAny(p, "\\\x00") {
				return "", false
			}
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/"), true
}

// ResolvePage returns the published page at path on the site with slug siteSlug,
// or nil when there is none
func (s *LiveService) ResolvePage(ctx context.Context, siteSlug, path string) (*domain.LivePage, error) {
	siteSlug = strings.TrimSpace(siteSlug)
	normalized, ok := NormalizePath(path)
	if siteSlug == "" || !ok {
		s.metrics.IncLive("page", "not_found")
		return nil, nil
	}

	var generation int64
	cacheable := s.cache != nil
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, siteSlug, normalized)
		if err != nil {
			log.Warn().Err(err).Str("site_slug", siteSlug).Msg("Live cache read failed")
			cacheable = false
		}
		generation = gen
		s.metrics.IncLiveCache(cached != nil)
		if cached != nil {
			s.metrics.IncLive("page", "found")
			return cached, nil
		}
	}

	resolved, err := s.resolvePage(ctx, siteSlug, normalized)
	if err != nil {
		s.metrics.IncLive("page", "error")
		return nil, err
	}
	if resolved == nil {
		s.metrics.IncLive("page", "not_found")
		return nil, nil
	}

	if cacheable {
		if err := s.cache.Set(ctx, siteSlug, normalized, generation, resolved); err != nil {
			log.Warn().Err(err).Str("site_slug", siteSlug).Msg("Live cache write failed")
		}
	}
	s.metrics.IncLive("page", "found")
	return resolved, nil
}

func (s *LiveService) resolvePage(ctx context.Context, siteSlug, path string) (*domain.LivePage, error) {
	site, err := s.siteBySlug(ctx, siteSlug)
	if err != nil || site == nil {
		return nil, err
	}

	pages, err := s.pages.ListBySite(ctx, site.ID)
	if err != nil {
		return nil, domain.Infrastructure("failed to list pages", err)
	}

	// The draft path may differ from the live one; only the snapshot path is served.
	for i := range pages {
		page := &pages[i]
		if page.PublishedVersionID == "" {
			continue
		}

		snapshot, err := s.snapshots.Get(ctx, page.PublishedVersionID)
		if err != nil {
			return nil, domain.Infrastructure("failed to load snapshot", err)
		}
		if snapshot == nil || snapshot.PageID != page.ID || snapshot.SiteID != site.ID {
			continue
		}
		if livePath, ok := NormalizePath(snapshot.Content.Path); !ok || livePath != path {
			continue
		}
		if len(snapshot.Content.Blocks) == 0 {
			return nil, nil
		}

		return buildLivePage(site, page, snapshot), nil
	}

	return nil, nil
}

// ResolveAsset returns a signed download URL for the asset referenced by ref on
// the site with slug siteSlug, or "" when the asset is not served by that site
func (s *LiveService) ResolveAsset(ctx context.Context, siteSlug, ref string) (string, error) {
	assetID := assetref.CandidateID(ref)
	if assetID == "" || strings.TrimSpace(siteSlug) == "" {
		s.metrics.IncLive("asset", "not_found")
		return "", nil
	}

	site, err := s.siteBySlug(ctx, strings.TrimSpace(siteSlug))
	if err != nil {
		s.metrics.IncLive("asset", "error")
		return "", err
	}
	if site == nil {
		s.metrics.IncLive("asset", "not_found")
		return "", nil
	}

	asset, err := s.assets.Get(ctx, assetID)
	if err != nil {
		s.metrics.IncLive("asset", "error")
		return "", domain.Infrastructure("failed to load asset", err)
	}
	if asset == nil || asset.SiteID != site.ID {
		s.metrics.IncLive("asset", "not_found")
		return "", nil
	}

	url, err := s.signer.SignedURL(ctx, asset)
	if err != nil {
		s.metrics.IncLive("asset", "error")
		return "", domain.Infrastructure("failed to sign asset URL", err)
	}

	s.metrics.IncLive("asset", "found")
	return url, nil
}

// siteBySlug picks the most recently updated site among those sharing slug.
// Equal timestamps keep the first site in store order.
func (s *LiveService) siteBySlug(ctx context.Context, slug string) (*domain.Site, error) {
	sites, err := s.sites.ListBySlug(ctx, slug)
	if err != nil {
		return nil, domain.Infrastructure("failed to list sites", err)
	}
	return pickMostRecent(sites), nil
}

func pickMostRecent(sites []domain.Site) *domain.Site {
	var best *domain.Site
	for i := range sites {
		if best == nil || sites[i].RecencyTime().After(best.RecencyTime()) {
			best = &sites[i]
		}
	}
	return best
}

func buildLivePage(site *domain.Site, page *domain.Page, snapshot *domain.Snapshot) *domain.LivePage {
	nav := site.NavigationItems
	if nav == nil {
		nav = []domain.NavigationItem{}
	}

	return &domain.LivePage{
		Site: domain.LiveSite{ID: site.ID, Slug: site.Slug, Name: site.Name},
		Page: domain.LivePageContent{
			ID:          page.ID,
			VersionID:   snapshot.ID,
			Version:     snapshot.Version,
			PublishedAt: snapshot.PublishedAt,
			PageContent: snapshot.Content,
		},
		Header:          site.ActiveHeader(),
		NavigationItems: nav,
	}
}
