package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// AssetRepository handles asset documents
type AssetRepository struct {
	store domain.DocumentStore
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(store domain.DocumentStore) *AssetRepository {
	return &AssetRepository{store: store}
}

// Get retrieves an asset by ID
func (r *AssetRepository) Get(ctx context.Context, id string) (*domain.Asset, error) {
	doc, err := r.store.Get(ctx, domain.CollectionAssets, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	asset, err := decode[domain.Asset](doc)
	if err != nil || asset == nil {
		return nil, err
	}
	if asset.ID == "" {
		asset.ID = doc.ID
	}
	return asset, nil
}

// Save writes an asset document
func (r *AssetRepository) Save(ctx context.Context, asset *domain.Asset) error {
	data, err := encode(asset)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionAssets, asset.ID, data, false); err != nil {
		return fmt.Errorf("failed to save asset: %w", err)
	}
	return nil
}

// Delete deletes an asset document
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, domain.CollectionAssets, id); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}
