package domain

import (
	"context"
	"time"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertOpen     AlertStatus = "open"
	AlertResolved AlertStatus = "resolved"
)

// Alert categories and reason codes
const (
	AlertCategoryPublish = "publish"

	ReasonPrePublishFailed   = "prepublish_failed"
	ReasonPublishWriteFailed = "publish_write_failed"
)

// Alert is a workspace-scoped operational record
type Alert struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspaceId"`
	Status      AlertStatus `json:"status"`
	Category    string      `json:"category"`
	SiteID      string      `json:"siteId,omitempty"`
	PageID      string      `json:"pageId,omitempty"`
	Message     string      `json:"message"`
	ReasonCode  string      `json:"reasonCode"`
	CreatedAt   time.Time   `json:"createdAt"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
	ResolvedBy  string      `json:"resolvedBy,omitempty"`
}

// AlertFilter narrows an alert listing
type AlertFilter struct {
	Status   string `validate:"omitempty,oneof=open resolved"`
	Category string `validate:"omitempty,max=100"`
	SiteID   string `validate:"omitempty,max=200"`
	Limit    int    `validate:"omitempty,min=1"`
}

// AlertList is the result of an alert listing
type AlertList struct {
	Rows  []Alert `json:"rows"`
	Count int     `json:"count"`
}

// AlertRepository defines the interface for alert storage
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	Get(ctx context.Context, id string) (*Alert, error)
	Update(ctx context.Context, alert *Alert) error
	ListByWorkspace(ctx context.Context, workspaceID string, filter AlertFilter) ([]Alert, error)
}
