package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// AuditLogRepository handles audit log documents
type AuditLogRepository struct {
	store domain.DocumentStore
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(store domain.DocumentStore) *AuditLogRepository {
	return &AuditLogRepository{store: store}
}

// Create writes an audit entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionAuditLogs, entry.ID, data, false); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// ListByWorkspace retrieves the audit entries of a workspace in insertion order
func (r *AuditLogRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.AuditLogEntry, error) {
	docs, err := r.store.List(ctx, domain.CollectionAuditLogs, domain.Eq("workspaceId", workspaceID))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return decodeAll[domain.AuditLogEntry](docs)
}
