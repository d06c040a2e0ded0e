package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/sitepublish/internal/domain"
)

// DraftService writes and previews page drafts. Draft writes never move the
// published pointer.
type DraftService struct {
	access *AccessService
	sites  domain.SiteRepository
	pages  domain.PageRepository
	audit  *AuditService
	clock  clock
}

// NewDraftService creates a new draft service
func NewDraftService(access *AccessService, sites domain.SiteRepository, pages domain.PageRepository, audit *AuditService) *DraftService {
	return &DraftService{access: access, sites: sites, pages: pages, audit: audit}
}

// Save replaces the draft content of a page
func (s *DraftService) Save(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID string, update domain.DraftUpdate) (*domain.Page, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.PublishRoles); err != nil {
		return nil, err
	}
	if err := validate.Struct(update); err != nil {
		return nil, domain.InvalidArgument("invalid draft: " + err.Error())
	}
	if _, err := loadSite(ctx, s.sites, workspaceID, siteID); err != nil {
		return nil, err
	}
	page, err := loadPage(ctx, s.pages, siteID, pageID)
	if err != nil {
		return nil, err
	}

	page.Title = strings.TrimSpace(update.Title)
	page.Slug = strings.TrimSpace(update.Slug)
	page.Path = strings.TrimSpace(update.Path)
	page.SEO = update.SEO
	page.Blocks = update.Blocks
	if page.Blocks == nil {
		page.Blocks = []domain.Block{}
	}
	page.DraftVersion++
	page.HasUnpublishedChanges = true
	page.UpdatedAt = s.clock.now()

	if err := s.pages.SaveDraft(ctx, page); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, domain.NotFound("page not found")
		}
		return nil, domain.Infrastructure("failed to save draft", err)
	}

	s.audit.Record(ctx, domain.AuditInput{
		WorkspaceID: workspaceID,
		Action:      domain.AuditActionPageDraft,
		EntityType:  domain.AuditEntityPage,
		EntityID:    page.ID,
		ActorUserID: caller.UserID,
		SiteID:      siteID,
		PageID:      page.ID,
		Summary:     fmt.Sprintf("Saved draft %d of %q", page.DraftVersion, page.Title),
		Metadata:    map[string]any{"draftVersion": page.DraftVersion, "blocks": len(page.Blocks)},
	})

	return page, nil
}

// Preview returns the current draft of a page to any workspace member
func (s *DraftService) Preview(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID string) (*domain.Page, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AnyMemberRoles); err != nil {
		return nil, err
	}
	if _, err := loadSite(ctx, s.sites, workspaceID, siteID); err != nil {
		return nil, err
	}
	return loadPage(ctx, s.pages, siteID, pageID)
}
