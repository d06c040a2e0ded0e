package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// SnapshotRepository handles the append-only page version log
type SnapshotRepository struct {
	store domain.DocumentStore
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(store domain.DocumentStore) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

// Create writes a new snapshot. Snapshots are never updated afterwards.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *domain.Snapshot) error {
	existing, err := r.store.Get(ctx, domain.CollectionPageVersions, snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("snapshot %s already exists", snapshot.ID)
	}

	data, err := encode(snapshot)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionPageVersions, snapshot.ID, data, false); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by ID
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	doc, err := r.store.Get(ctx, domain.CollectionPageVersions, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decode[domain.Snapshot](doc)
}

// ListBySite retrieves the whole version log of a site in insertion order
func (r *SnapshotRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Snapshot, error) {
	docs, err := r.store.List(ctx, domain.CollectionPageVersions, domain.Eq("siteId", siteID))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return decodeAll[domain.Snapshot](docs)
}
