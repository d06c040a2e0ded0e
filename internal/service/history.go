package service

import (
	"context"
	"sort"

	"github.com/Rrens/sitepublish/internal/domain"
)

// HistoryService lists the published versions of a page
type HistoryService struct {
	access       *AccessService
	sites        domain.SiteRepository
	pages        domain.PageRepository
	snapshots    domain.SnapshotRepository
	defaultLimit int
	maxLimit     int
}

// NewHistoryService creates a new history service
func NewHistoryService(
	access *AccessService,
	sites domain.SiteRepository,
	pages domain.PageRepository,
	snapshots domain.SnapshotRepository,
	defaultLimit, maxLimit int,
) *HistoryService {
	return &HistoryService{
		access:       access,
		sites:        sites,
		pages:        pages,
		snapshots:    snapshots,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List returns the page's versions newest first, after an access check
func (s *HistoryService) List(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID string, limit int) (*domain.PublishHistory, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AnyMemberRoles); err != nil {
		return nil, err
	}
	if _, err := loadSite(ctx, s.sites, workspaceID, siteID); err != nil {
		return nil, err
	}
	return s.ListVersions(ctx, siteID, pageID, limit)
}

// ListVersions sorts the page's snapshots by publishedAt descending, ties kept
// in insertion order, and truncates to limit
func (s *HistoryService) ListVersions(ctx context.Context, siteID, pageID string, limit int) (*domain.PublishHistory, error) {
	page, err := loadPage(ctx, s.pages, siteID, pageID)
	if err != nil {
		return nil, err
	}

	all, err := s.snapshots.ListBySite(ctx, siteID)
	if err != nil {
		return nil, domain.Infrastructure("failed to list versions", err)
	}

	var own []domain.Snapshot
	for _, snap := range all {
		if snap.PageID == page.ID {
			own = append(own, snap)
		}
	}

	sort.SliceStable(own, func(i, j int) bool {
		return own[i].PublishedAt.After(own[j].PublishedAt)
	})

	limit = clampLimit(limit, s.defaultLimit, s.maxLimit)
	if len(own) > limit {
		own = own[:limit]
	}

	versions := make([]domain.HistoryVersion, 0, len(own))
	for _, snap := range own {
		versions = append(versions, domain.HistoryVersion{
			ID:                        snap.ID,
			Version:                   snap.Version,
			SourceDraftVersion:        snap.SourceDraftVersion,
			PublishedAt:               snap.PublishedAt,
			PublishedBy:               snap.PublishedBy,
			Title:                     snap.Content.Title,
			Slug:                      snap.Content.Slug,
			Path:                      snap.Content.Path,
			IsCurrentPublishedVersion: page.PublishedVersionID != "" && snap.ID == page.PublishedVersionID,
		})
	}

	return &domain.PublishHistory{Page: page, Versions: versions}, nil
}
