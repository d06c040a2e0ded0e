package domain

import (
	"context"
	"time"
)

// AuditLogEntry is an immutable record of a state-changing operation
type AuditLogEntry struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspaceId"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entityType"`
	EntityID    string         `json:"entityId"`
	ActorUserID string         `json:"actorUserId"`
	SiteID      string         `json:"siteId,omitempty"`
	PageID      string         `json:"pageId,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// AuditInput is the data needed to write an audit entry
type AuditInput struct {
	WorkspaceID string
	Action      string
	EntityType  string
	EntityID    string
	ActorUserID string
	SiteID      string
	PageID      string
	Summary     string
	Metadata    map[string]any
}

// Audit actions and entity types
const (
	AuditActionPagePublish  = "page.publish"
	AuditActionPageRollback = "page.rollback"
	AuditActionPageDraft    = "page.draft_update"
	AuditActionAssetDelete  = "asset.delete"
	AuditActionAlertResolve = "alert.resolve"

	AuditEntityPage  = "page"
	AuditEntityAsset = "asset"
	AuditEntityAlert = "alert"
)

// AuditLogRepository defines the interface for audit storage
type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLogEntry) error
}
