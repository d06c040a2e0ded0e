package domain

import (
	"context"
	"time"
)

// Asset is a media object stored for a site
type Asset struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspaceId"`
	SiteID        string    `json:"siteId"`
	StoragePath   string    `json:"storagePath"`
	DownloadToken string    `json:"downloadToken,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	ContentType   string    `json:"contentType,omitempty"`
	Size          int64     `json:"size,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReferenceSource tags where an asset reference was found
type ReferenceSource string

const (
	SourceSiteHeader       ReferenceSource = "site-header"
	SourceSiteHeaderPreset ReferenceSource = "site-header-preset"
	SourcePageSEO          ReferenceSource = "page-seo"
	SourcePageBlock        ReferenceSource = "page-block"
)

// AssetReference is one asset id found while scanning a site or page
type AssetReference struct {
	AssetID string          `json:"assetId"`
	Source  ReferenceSource `json:"source"`
	Detail  string          `json:"detail"`
}

// AssetUsage locates a reference to a specific asset within a workspace
type AssetUsage struct {
	SiteID string          `json:"siteId"`
	PageID string          `json:"pageId,omitempty"`
	Source ReferenceSource `json:"source"`
	Detail string          `json:"detail"`
}

// AssetRepository defines the interface for asset storage
type AssetRepository interface {
	Get(ctx context.Context, id string) (*Asset, error)
	Delete(ctx context.Context, id string) error
}
