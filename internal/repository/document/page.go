package document

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
)

// PageRepository handles page documents. The draft and publish writes touch disjoint fields.
type PageRepository struct {
	store domain.DocumentStore
}

// NewPageRepository creates a new page repository
func NewPageRepository(store domain.DocumentStore) *PageRepository {
	return &PageRepository{store: store}
}

// Get retrieves a page by ID
func (r *PageRepository) Get(ctx context.Context, id string) (*domain.Page, error) {
	doc, err := r.store.Get(ctx, domain.CollectionPages, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	page, err := decode[domain.Page](doc)
	if err != nil || page == nil {
		return nil, err
	}
	if page.ID == "" {
		page.ID = doc.ID
	}
	return page, nil
}

// ListBySite retrieves every page of a site
func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Page, error) {
	docs, err := r.store.List(ctx, domain.CollectionPages, domain.Eq("siteId", siteID))
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	pages, err := decodeAll[domain.Page](docs)
	if err != nil {
		return nil, err
	}
	for i := range pages {
		if pages[i].ID == "" {
			pages[i].ID = docs[i].ID
		}
	}
	return pages, nil
}

// Save writes a full page document
func (r *PageRepository) Save(ctx context.Context, page *domain.Page) error {
	data, err := encode(page)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionPages, page.ID, data, false); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	return nil
}

// SaveDraft writes the draft fields and marks the page as having unpublished changes.
// The published pointer is never part of this write, and a missing page is not recreated.
func (r *PageRepository) SaveDraft(ctx context.Context, page *domain.Page) error {
	blocks := page.Blocks
	if blocks == nil {
		blocks = []domain.Block{}
	}
	data, err := encode(map[string]any{
		"title":                 page.Title,
		"slug":                  page.Slug,
		"path":                  page.Path,
		"seo":                   page.SEO,
		"blocks":                blocks,
		"draftVersion":          page.DraftVersion,
		"hasUnpublishedChanges": true,
		"updatedAt":             page.UpdatedAt,
	})
	if err != nil {
		return err
	}
	found, err := r.store.Update(ctx, domain.CollectionPages, page.ID, data)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if !found {
		return fmt.Errorf("failed to save draft of page %s: %w", page.ID, domain.ErrDocumentNotFound)
	}
	return nil
}

// SetPublishedPointer advances the live pointer and records whether the draft still
// differs from it. A page deleted in the meantime is not recreated; the error wraps
// domain.ErrDocumentNotFound.
func (r *PageRepository) SetPublishedPointer(ctx context.Context, pageID, versionID string, publishedAt time.Time, hasUnpublishedChanges bool) error {
	data, err := encode(map[string]any{
		"publishedVersionId":    versionID,
		"hasUnpublishedChanges": hasUnpublishedChanges,
		"publishedAt":           publishedAt,
	})
	if err != nil {
		return err
	}
	found, err := r.store.Update(ctx, domain.CollectionPages, pageID, data)
	if err != nil {
		return fmt.Errorf("failed to update published pointer: %w", err)
	}
	if !found {
		return fmt.Errorf("failed to update published pointer of page %s: %w", pageID, domain.ErrDocumentNotFound)
	}
	return nil
}
