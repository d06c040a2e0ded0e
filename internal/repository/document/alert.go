package document

import (
	"context"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

// AlertRepository handles alert documents
type AlertRepository struct {
	store domain.DocumentStore
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(store domain.DocumentStore) *AlertRepository {
	return &AlertRepository{store: store}
}

// Create writes a new alert
func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	return r.save(ctx, alert)
}

// Update overwrites an alert
func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	return r.save(ctx, alert)
}

// Get retrieves an alert by ID
func (r *AlertRepository) Get(ctx context.Context, id string) (*domain.Alert, error) {
	doc, err := r.store.Get(ctx, domain.CollectionAlerts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return decode[domain.Alert](doc)
}

// ListByWorkspace retrieves the alerts of a workspace matching the equality parts of filter.
// Ordering and limits are applied by the caller.
func (r *AlertRepository) ListByWorkspace(ctx context.Context, workspaceID string, filter domain.AlertFilter) ([]domain.Alert, error) {
	filters := []domain.Filter{domain.Eq("workspaceId", workspaceID)}
	if filter.Status != "" {
		filters = append(filters, domain.Eq("status", filter.Status))
	}
	if filter.Category != "" {
		filters = append(filters, domain.Eq("category", filter.Category))
	}
	if filter.SiteID != "" {
		filters = append(filters, domain.Eq("siteId", filter.SiteID))
	}

	docs, err := r.store.List(ctx, domain.CollectionAlerts, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return decodeAll[domain.Alert](docs)
}

func (r *AlertRepository) save(ctx context.Context, alert *domain.Alert) error {
	data, err := encode(alert)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.CollectionAlerts, alert.ID, data, false); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}
