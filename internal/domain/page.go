package domain

import (
	"context"
	"time"
)

// Block is an ordered, typed content unit of a page
type Block struct {
	ID          string         `json:"id" validate:"required"`
	SectionType string         `json:"sectionType" validate:"required"`
	Variant     string         `json:"variant,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
}

// Label is the human readable block type used in messages, e.g. "hero.centered"
func (b Block) Label() string {
	if b.Variant == "" {
		return b.SectionType
	}
	return b.SectionType + "." + b.Variant
}

// SEO holds page search and sharing metadata
type SEO struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	OGImageURL     string `json:"ogImageUrl,omitempty"`
	OGImageAssetID string `json:"ogImageAssetId,omitempty"`
}

// PageContent is the renderable part of a page, copied into snapshots at publish time
type PageContent struct {
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	Path   string  `json:"path"`
	SEO    SEO     `json:"seo"`
	Blocks []Block `json:"blocks"`
}

// Page is an editable unit with draft fields and a pointer to its live snapshot
type Page struct {
	ID          string `json:"id"`
	SiteID      string `json:"siteId"`
	WorkspaceID string `json:"workspaceId"`
	PageContent
	DraftVersion          int        `json:"draftVersion"`
	PublishedVersionID    string     `json:"publishedVersionId,omitempty"`
	HasUnpublishedChanges bool       `json:"hasUnpublishedChanges"`
	PublishedAt           *time.Time `json:"publishedAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// DraftUpdate is the payload of a draft write
type DraftUpdate struct {
	Title  string  `json:"title" validate:"required,max=300"`
	Slug   string  `json:"slug" validate:"max=200"`
	Path   string  `json:"path" validate:"max=1000"`
	SEO    SEO     `json:"seo"`
	Blocks []Block `json:"blocks" validate:"dive"`
}

// Snapshot is an immutable published version of a page
type Snapshot struct {
	ID                 string      `json:"id"`
	WorkspaceID        string      `json:"workspaceId"`
	SiteID             string      `json:"siteId"`
	PageID             string      `json:"pageId"`
	Version            int         `json:"version"`
	SourceDraftVersion int         `json:"sourceDraftVersion"`
	PublishedAt        time.Time   `json:"publishedAt"`
	PublishedBy        string      `json:"publishedBy"`
	RolledBackFrom     string      `json:"rolledBackFrom,omitempty"`
	Content            PageContent `json:"content"`
}

// HistoryVersion is the read model of one row of publish history
type HistoryVersion struct {
	ID                        string    `json:"id"`
	Version                   int       `json:"version"`
	SourceDraftVersion        int       `json:"sourceDraftVersion"`
	PublishedAt               time.Time `json:"publishedAt"`
	PublishedBy               string    `json:"publishedBy"`
	Title                     string    `json:"title"`
	Slug                      string    `json:"slug"`
	Path                      string    `json:"path"`
	IsCurrentPublishedVersion bool      `json:"isCurrentPublishedVersion"`
}

// PublishHistory is the result of listing a page's snapshots
type PublishHistory struct {
	Page     *Page            `json:"page"`
	Versions []HistoryVersion `json:"versions"`
}

// CheckResult is the outcome of one pre-publish check
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// PrePublishReport is the result of a pre-publish validation run.
// OK is false when the checks could not run at all; Valid is the AND of every check.
type PrePublishReport struct {
	OK         bool          `json:"ok"`
	Valid      bool          `json:"valid"`
	Checks     []CheckResult `json:"checks"`
	Error      string        `json:"error,omitempty"`
	StatusCode int           `json:"statusCode,omitempty"`
}

// LivePage is a page resolved for public traffic, sourced only from a snapshot
type LivePage struct {
	Site            LiveSite         `json:"site"`
	Page            LivePageContent  `json:"page"`
	Header          HeaderSettings   `json:"header"`
	NavigationItems []NavigationItem `json:"navigationItems"`
}

// LiveSite is the public projection of a site
type LiveSite struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// LivePageContent is the public projection of a published snapshot
type LivePageContent struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"versionId"`
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`
	PageContent
}

// PageRepository defines the interface for page storage
type PageRepository interface {
	Get(ctx context.Context, id string) (*Page, error)
	ListBySite(ctx context.Context, siteID string) ([]Page, error)
	SaveDraft(ctx context.Context, page *Page) error
	SetPublishedPointer(ctx context.Context, pageID, versionID string, publishedAt time.Time, hasUnpublishedChanges bool) error
}

// SnapshotRepository defines the interface for the per-site version log
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	ListBySite(ctx context.Context, siteID string) ([]Snapshot, error)
}
