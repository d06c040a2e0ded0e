package domain

import (
	"context"
	"time"
)

// Site is a publishable property within a workspace. Slugs are not unique at the data layer.
type Site struct {
	ID              string           `json:"id"`
	WorkspaceID     string           `json:"workspaceId"`
	Slug            string           `json:"slug"`
	Name            string           `json:"name"`
	Header          HeaderConfig     `json:"header"`
	NavigationItems []NavigationItem `json:"navigationItems,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// HeaderConfig holds the base header settings and the named presets
type HeaderConfig struct {
	ActivePresetID string         `json:"activePresetId,omitempty"`
	LogoAssetID    string         `json:"logoAssetId,omitempty"`
	LogoAlt        string         `json:"logoAlt,omitempty"`
	Layout         string         `json:"layout,omitempty"`
	Presets        []HeaderPreset `json:"presets,omitempty"`
}

// HeaderPreset is a named alternative header configuration
type HeaderPreset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoAssetID string `json:"logoAssetId,omitempty"`
	LogoAlt     string `json:"logoAlt,omitempty"`
	Layout      string `json:"layout,omitempty"`
}

// HeaderSettings is the header in effect after preset resolution
type HeaderSettings struct {
	PresetID    string `json:"presetId,omitempty"`
	LogoAssetID string `json:"logoAssetId,omitempty"`
	LogoAlt     string `json:"logoAlt,omitempty"`
	Layout      string `json:"layout,omitempty"`
}

// NavigationItem is an entry of the site navigation tree
type NavigationItem struct {
	ID       string           `json:"id"`
	Label    string           `json:"label"`
	Href     string           `json:"href"`
	Children []NavigationItem `json:"children,omitempty"`
}

// ActiveHeader resolves the active preset. An unknown preset id falls back to the base settings.
func (s *Site) ActiveHeader() HeaderSettings {
	h := s.Header
	if h.ActivePresetID != "" {
		for _, p := range h.Presets {
			if p.ID == h.ActivePresetID {
				return HeaderSettings{
					PresetID:    p.ID,
					LogoAssetID: p.LogoAssetID,
					LogoAlt:     p.LogoAlt,
					Layout:      p.Layout,
				}
			}
		}
	}
	return HeaderSettings{
		LogoAssetID: h.LogoAssetID,
		LogoAlt:     h.LogoAlt,
		Layout:      h.Layout,
	}
}

// RecencyTime is the timestamp used to rank sites that share a slug
func (s *Site) RecencyTime() time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// SiteRepository defines the interface for site storage
type SiteRepository interface {
	Get(ctx context.Context, id string) (*Site, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Site, error)
	ListBySlug(ctx context.Context, slug string) ([]Site, error)
}
