package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// WorkspaceRepository handles workspace and membership documents
type WorkspaceRepository struct {
	store domain.DocumentStore
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(store domain.DocumentStore) *WorkspaceRepository {
	return &WorkspaceRepository{store: store}
}

// Get retrieves a workspace by ID
func (r *WorkspaceRepository) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	doc, err := r.store.Get(ctx, domain.CollectionWorkspaces, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	ws, err := decode[domain.Workspace](doc)
	if err != nil || ws == nil {
		return nil, err
	}
	if ws.ID == "" {
		ws.ID = doc.ID
	}
	return ws, nil
}

// Save writes a workspace document
func (r *WorkspaceRepository) Save(ctx context.Context, ws *domain.Workspace) error {
	data, err := encode(ws)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionWorkspaces, ws.ID, data, false); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// GetMembership retrieves the membership of a user in a workspace
func (r *WorkspaceRepository) GetMembership(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	doc, err := r.store.Get(ctx, domain.CollectionMembers, domain.MembershipID(workspaceID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return decode[domain.Membership](doc)
}

// SaveMembership writes a membership document
func (r *WorkspaceRepository) SaveMembership(ctx context.Context, m *domain.Membership) error {
	data, err := encode(m)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionMembers, domain.MembershipID(m.WorkspaceID, m.UserID), data, false); err != nil {
		return fmt.Errorf("failed to save membership: %w", err)
	}
	return nil
}
