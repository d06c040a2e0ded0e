package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PublishService promotes drafts into immutable snapshots and moves the live pointer.
//
// Concurrent publishes of one page are not serialized: both snapshots are kept
// and the last pointer write wins. With optimistic enabled the engine re-reads the
// pointer before writing it and fails with Conflict if another publish moved it.
type PublishService struct {
	access     *AccessService
	sites      domain.SiteRepository
	pages      domain.PageRepository
	snapshots  domain.SnapshotRepository
	checks     *PrePublishService
	alerts     *AlertService
	audit      *AuditService
	cache      LiveCache
	metrics    *metrics.ServerMetrics
	optimistic bool
	clock      clock
}

// PublishDeps groups the collaborators of PublishService
type PublishDeps struct {
	Access     *AccessService
	Sites      domain.SiteRepository
	Pages      domain.PageRepository
	Snapshots  domain.SnapshotRepository
	Checks     *PrePublishService
	Alerts     *AlertService
	Audit      *AuditService
	Cache      LiveCache
	Metrics    *metrics.ServerMetrics
	Optimistic bool
}

// NewPublishService creates a new publish service
func NewPublishService(deps PublishDeps) *PublishService {
	return &PublishService{
		access:     deps.Access,
		sites:      deps.Sites,
		pages:      deps.Pages,
		snapshots:  deps.Snapshots,
		checks:     deps.Checks,
		alerts:     deps.Alerts,
		audit:      deps.Audit,
		cache:      deps.Cache,
		metrics:    deps.Metrics,
		optimistic: deps.Optimistic,
	}
}

// Publish validates the page draft and publishes it as a new snapshot
func (s *PublishService) Publish(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID string) (*domain.Snapshot, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.PublishRoles); err != nil {
		return nil, err
	}

	site, err := loadSite(ctx, s.sites, workspaceID, siteID)
	if err != nil {
		return nil, err
	}
	page, err := loadPage(ctx, s.pages, siteID, pageID)
	if err != nil {
		return nil, err
	}

	report, err := s.checks.evaluate(ctx, site, page)
	if err != nil {
		s.metrics.IncPublish("publish", "error")
		return nil, err
	}
	if !report.Valid {
		s.metrics.IncPublish("publish", "invalid")
		s.alerts.Raise(ctx, workspaceID, siteID, pageID, domain.ReasonPrePublishFailed,
			fmt.Sprintf("Publishing %q was blocked by pre-publish checks", page.Title))
		return nil, domain.ValidationFailed("pre-publish checks failed", report.Checks)
	}

	snapshot := &domain.Snapshot{
		ID:                 uuid.NewString(),
		WorkspaceID:        site.WorkspaceID,
		SiteID:             site.ID,
		PageID:             page.ID,
		SourceDraftVersion: page.DraftVersion,
		PublishedBy:        caller.UserID,
		Content:            copyContent(page.PageContent),
	}

	if err := s.commit(ctx, site, page, snapshot, "publish", false); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditInput{
		WorkspaceID: workspaceID,
		Action:      domain.AuditActionPagePublish,
		EntityType:  domain.AuditEntityPage,
		EntityID:    page.ID,
		ActorUserID: caller.UserID,
		SiteID:      site.ID,
		PageID:      page.ID,
		Summary:     fmt.Sprintf("Published %q as version %d", page.Title, snapshot.Version),
		Metadata: map[string]any{
			"versionId":          snapshot.ID,
			"version":            snapshot.Version,
			"sourceDraftVersion": snapshot.SourceDraftVersion,
			"previousVersionId":  nilIfEmpty(page.PublishedVersionID),
		},
	})

	return snapshot, nil
}

// Rollback republishes the content of an earlier snapshot as a new version.
// The chosen snapshot itself is left untouched.
func (s *PublishService) Rollback(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID, versionID string) (*domain.Snapshot, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AdminRoles); err != nil {
		return nil, err
	}

	site, err := loadSite(ctx, s.sites, workspaceID, siteID)
	if err != nil {
		return nil, err
	}
	page, err := loadPage(ctx, s.pages, siteID, pageID)
	if err != nil {
		return nil, err
	}

	target, err := s.snapshots.Get(ctx, versionID)
	if err != nil {
		return nil, domain.Infrastructure("failed to load version", err)
	}
	if target == nil || target.PageID != page.ID || target.SiteID != site.ID {
		return nil, domain.NotFound("version not found")
	}

	snapshot := &domain.Snapshot{
		ID:                 uuid.NewString(),
		WorkspaceID:        site.WorkspaceID,
		SiteID:             site.ID,
		PageID:             page.ID,
		SourceDraftVersion: target.SourceDraftVersion,
		PublishedBy:        caller.UserID,
		RolledBackFrom:     target.ID,
		Content:            copyContent(target.Content),
	}

	// the draft is left alone, so it stays unpublished unless it matches the restored content
	draftDiffers := !sameContent(page.PageContent, snapshot.Content)
	if err := s.commit(ctx, site, page, snapshot, "rollback", draftDiffers); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, domain.AuditInput{
		WorkspaceID: workspaceID,
		Action:      domain.AuditActionPageRollback,
		EntityType:  domain.AuditEntityPage,
		EntityID:    page.ID,
		ActorUserID: caller.UserID,
		SiteID:      site.ID,
		PageID:      page.ID,
		Summary:     fmt.Sprintf("Rolled back to version %d as version %d", target.Version, snapshot.Version),
		Metadata: map[string]any{
			"versionId":       snapshot.ID,
			"version":         snapshot.Version,
			"restoredVersion": target.Version,
			"restoredId":      target.ID,
		},
	})

	return snapshot, nil
}

// commit assigns the next version, writes the snapshot, then advances the pointer.
// The snapshot write completes before the pointer is touched so a failure in
// between leaves the previous pointer valid. draftDiffers is stored as the page's
// unpublished-changes flag.
func (s *PublishService) commit(
	ctx context.Context,
	site *domain.Site,
	page *domain.Page,
	snapshot *domain.Snapshot,
	operation string,
	draftDiffers bool,
) error {
	version, err := s.nextVersion(ctx, site.ID, page.ID)
	if err != nil {
		s.metrics.IncPublish(operation, "error")
		return err
	}
	snapshot.Version = version
	snapshot.PublishedAt = s.clock.now()

	if err := s.snapshots.Create(ctx, snapshot); err != nil {
		s.metrics.IncPublish(operation, "error")
		s.alerts.Raise(ctx, site.WorkspaceID, site.ID, page.ID, domain.ReasonPublishWriteFailed,
			fmt.Sprintf("Failed to write version %d of %q", version, page.Title))
		return domain.Infrastructure("failed to write snapshot", err)
	}

	if s.optimistic {
		current, err := s.pages.Get(ctx, page.ID)
		if err != nil {
			s.metrics.IncPublish(operation, "error")
			return domain.Infrastructure("failed to re-read page", err)
		}
		if current == nil || current.PublishedVersionID != page.PublishedVersionID {
			s.metrics.IncPublish(operation, "conflict")
			return domain.Conflict("page was published concurrently", map[string]any{
				"versionId":          snapshot.ID,
				"publishedVersionId": currentPointer(current),
			})
		}
	}

	if err := s.pages.SetPublishedPointer(ctx, page.ID, snapshot.ID, snapshot.PublishedAt, draftDiffers); err != nil {
		s.metrics.IncPublish(operation, "error")
		if errors.Is(err, domain.ErrDocumentNotFound) {
			log.Warn().Str("page_id", page.ID).Str("version_id", snapshot.ID).Msg("Page deleted during publish")
			return domain.NotFound("page not found")
		}
		s.alerts.Raise(ctx, site.WorkspaceID, site.ID, page.ID, domain.ReasonPublishWriteFailed,
			fmt.Sprintf("Version %d of %q was written but could not be made live", version, page.Title))
		return domain.Infrastructure("failed to update published pointer", err)
	}

	s.invalidate(ctx, site.Slug)
	s.metrics.IncPublish(operation, "ok")
	return nil
}

func (s *PublishService) nextVersion(ctx context.Context, siteID, pageID string) (int, error) {
	snapshots, err := s.snapshots.ListBySite(ctx, siteID)
	if err != nil {
		return 0, domain.Infrastructure("failed to list versions", err)
	}

	highest := 0
	for _, snap := range snapshots {
		if snap.PageID == pageID && snap.Version > highest {
			highest = snap.Version
		}
	}
	return highest + 1, nil
}

func (s *PublishService) invalidate(ctx context.Context, siteSlug string) {
	if s.cache == nil || siteSlug == "" {
		return
	}
	if _, err := s.cache.InvalidateSite(context.WithoutCancel(ctx), siteSlug); err != nil {
		log.Warn().Err(err).Str("site_slug", siteSlug).Msg("Failed to invalidate live cache")
	}
}

// copyContent detaches snapshot content from the draft it was built from
func copyContent(c domain.PageContent) domain.PageContent {
	out := c
	out.Blocks = make([]domain.Block, len(c.Blocks))
	for i, b := range c.Blocks {
		out.Blocks[i] = b
		out.Blocks[i].Props = deepCopyMap(b.Props)
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// sameContent compares the rendered form of two page contents
func sameContent(a, b domain.PageContent) bool {
	ja, errA := json.Marshal(canonicalContent(a))
	jb, errB := json.Marshal(canonicalContent(b))
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}

func canonicalContent(c domain.PageContent) domain.PageContent {
	if c.Blocks == nil {
		c.Blocks = []domain.Block{}
	}
	return c
}

func currentPointer(p *domain.Page) string {
	if p == nil {
		return ""
	}
	return p.PublishedVersionID
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
