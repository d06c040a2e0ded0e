package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// SiteRepository handles site documents
type SiteRepository struct {
	store domain.DocumentStore
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(store domain.DocumentStore) *SiteRepository {
	return &SiteRepository{store: store}
}

// Get retrieves a site by ID
func (r *SiteRepository) Get(ctx context.Context, id string) (*domain.Site, error) {
	doc, err := r.store.Get(ctx, domain.CollectionSites, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}
	site, err := decode[domain.Site](doc)
	if err != nil || site == nil {
		return nil, err
	}
	if site.ID == "" {
		site.ID = doc.ID
	}
	return site, nil
}

// ListByWorkspace retrieves every site of a workspace
func (r *SiteRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Site, error) {
	return r.list(ctx, domain.Eq("workspaceId", workspaceID))
}

// ListBySlug retrieves every site using slug. Slugs are not unique.
func (r *SiteRepository) ListBySlug(ctx context.Context, slug string) ([]domain.Site, error) {
	return r.list(ctx, domain.Eq("slug", slug))
}

// Save writes a site document
func (r *SiteRepository) Save(ctx context.Context, site *domain.Site) error {
	data, err := encode(site)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionSites, site.ID, data, false); err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

func (r *SiteRepository) list(ctx context.Context, filters ...domain.Filter) ([]domain.Site, error) {
	docs, err := r.store.List(ctx, domain.CollectionSites, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	sites, err := decodeAll[domain.Site](docs)
	if err != nil {
		return nil, err
	}
	for i := range sites {
		if sites[i].ID == "" {
			sites[i].ID = docs[i].ID
		}
	}
	return sites, nil
}
