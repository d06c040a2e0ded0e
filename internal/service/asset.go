package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/sitepublish/internal/assetref"
	"github.com/Rrens/sitepublish/internal/domain"
	"golang.org/x/sync/errgroup"
)

// AssetService tracks where assets are referenced and guards their deletion
type AssetService struct {
	access      *AccessService
	sites       domain.SiteRepository
	pages       domain.PageRepository
	assets      domain.AssetRepository
	audit       *AuditService
	scanTimeout time.Duration
}

// NewAssetService creates a new asset service
func NewAssetService(
	access *AccessService,
	sites domain.SiteRepository,
	pages domain.PageRepository,
	assets domain.AssetRepository,
	audit *AuditService,
	scanTimeout time.Duration,
) *AssetService {
	return &AssetService{
		access:      access,
		sites:       sites,
		pages:       pages,
		assets:      assets,
		audit:       audit,
		scanTimeout: scanTimeout,
	}
}

// Usages lists where assetID is referenced, for any workspace member
func (s *AssetService) Usages(ctx context.Context, caller domain.Caller, workspaceID, assetID string) ([]domain.AssetUsage, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AnyMemberRoles); err != nil {
		return nil, err
	}
	return s.scan(ctx, workspaceID, assetID)
}

// WorkspaceUsages scans every site and page of the workspace for references to
// assetID. Sites are scanned concurrently; rows keep site order.
func (s *AssetService) WorkspaceUsages(ctx context.Context, workspaceID, assetID string) ([]domain.AssetUsage, error) {
	sites, err := s.sites.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, domain.Infrastructure("failed to list sites", err)
	}

	perSite := make([][]domain.AssetUsage, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	for i := range sites {
		site := &sites[i]
		g.Go(func() error {
			rows, err := s.scanSite(gctx, site, assetID)
			if err != nil {
				return err
			}
			perSite[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usages := []domain.AssetUsage{}
	for _, rows := range perSite {
		usages = append(usages, rows...)
	}
	return usages, nil
}

func (s *AssetService) scanSite(ctx context.Context, site *domain.Site, assetID string) ([]domain.AssetUsage, error) {
	var rows []domain.AssetUsage

	for _, ref := range assetref.Collect(site, nil, true) {
		if ref.AssetID == assetID {
			rows = append(rows, domain.AssetUsage{SiteID: site.ID, Source: ref.Source, Detail: ref.Detail})
		}
	}

	pages, err := s.pages.ListBySite(ctx, site.ID)
	if err != nil {
		return nil, domain.Infrastructure(fmt.Sprintf("failed to list pages of site %s", site.ID), err)
	}
	for i := range pages {
		for _, ref := range assetref.Collect(nil, &pages[i].PageContent, false) {
			if ref.AssetID == assetID {
				rows = append(rows, domain.AssetUsage{
					SiteID: site.ID,
					PageID: pages[i].ID,
					Source: ref.Source,
					Detail: ref.Detail,
				})
			}
		}
	}

	return rows, nil
}

// Delete removes an asset that nothing references. A failed scan aborts the deletion.
func (s *AssetService) Delete(ctx context.Context, caller domain.Caller, workspaceID, siteID, assetID string) error {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.PublishRoles); err != nil {
		return err
	}
	if _, err := loadSite(ctx, s.sites, workspaceID, siteID); err != nil {
		return err
	}

	asset, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return domain.Infrastructure("failed to load asset", err)
	}
	if asset == nil || asset.SiteID != siteID {
		return domain.NotFound("asset not found")
	}

	usages, err := s.scan(ctx, workspaceID, assetID)
	if err != nil {
		return err
	}
	if len(usages) > 0 {
		return domain.Conflict(fmt.Sprintf("asset is referenced in %d places", len(usages)), usages)
	}

	if err := s.assets.Delete(ctx, assetID); err != nil {
		return domain.Infrastructure("failed to delete asset", err)
	}

	s.audit.Record(ctx, domain.AuditInput{
		WorkspaceID: workspaceID,
		Action:      domain.AuditActionAssetDelete,
		EntityType:  domain.AuditEntityAsset,
		EntityID:    assetID,
		ActorUserID: caller.UserID,
		SiteID:      siteID,
		Summary:     "Deleted asset " + asset.FileName,
		Metadata: map[string]any{
			"storagePath": asset.StoragePath,
			"contentType": asset.ContentType,
		},
	})

	return nil
}

// scan bounds the workspace scan by the configured timeout
func (s *AssetService) scan(ctx context.Context, workspaceID, assetID string) ([]domain.AssetUsage, error) {
	if s.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scanTimeout)
		defer cancel()
	}
	return s.WorkspaceUsages(ctx, workspaceID, assetID)
}
