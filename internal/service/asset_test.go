package service

import (
	"errors"
	"testing"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedAsset(t *testing.T, id, siteID string) {
	t.Helper()
	require.NoError(t, f.assets.Save(f.ctx, &domain.Asset{
		ID:          id,
		SiteID:      siteID,
		WorkspaceID: "ws1",
		StoragePath: "sites/" + siteID + "/" + id,
		FileName:    id + ".png",
	}))
}

func TestAssetService_WorkspaceUsages_NestedBlockProp(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, "X", "site1")

	page := f.page(t, "home")
	page.Blocks = append(page.Blocks, domain.Block{
		ID:          "b2",
		SectionType: "media",
		Variant:     "split",
		Props:       map[string]any{"media": map[string]any{"assetId": "X"}},
	})
	f.savePage(t, page)

	usages, err := f.assetSvc.WorkspaceUsages(f.ctx, "ws1", "X")
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, domain.AssetUsage{
		SiteID: "site1",
		PageID: "home",
		Source: domain.SourcePageBlock,
		Detail: "Block 2 (media.split)",
	}, usages[0])
}

func TestAssetService_WorkspaceUsages_HeaderAndPresets(t *testing.T) {
	f := newFixture(t)

	site, err := f.sites.Get(f.ctx, "site1")
	require.NoError(t, err)
	site.Header = domain.HeaderConfig{
		ActivePresetID: "dark",
		LogoAssetID:    "base-logo",
		Presets: []domain.HeaderPreset{
			{ID: "dark", Name: "Dark", LogoAssetID: "logo"},
			{ID: "light", Name: "Light", LogoAssetID: "logo"},
		},
	}
	require.NoError(t, f.sites.Save(f.ctx, site))

	page := f.page(t, "home")
	page.SEO.OGImageAssetID = "logo"
	f.savePage(t, page)

	usages, err := f.assetSvc.WorkspaceUsages(f.ctx, "ws1", "logo")
	require.NoError(t, err)

	var sources []domain.ReferenceSource
	for _, u := range usages {
		assert.Equal(t, "site1", u.SiteID)
		sources = append(sources, u.Source)
	}
	assert.Contains(t, sources, domain.SourceSiteHeader)
	assert.Contains(t, sources, domain.SourceSiteHeaderPreset)
	assert.Contains(t, sources, domain.SourcePageSEO)

	// the overridden base logo still counts, once
	base, err := f.assetSvc.WorkspaceUsages(f.ctx, "ws1", "base-logo")
	require.NoError(t, err)
	require.Len(t, base, 1)
	assert.Equal(t, domain.SourceSiteHeader, base[0].Source)

	f.seedAsset(t, "base-logo", "site1")
	err = f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "base-logo")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	none, err := f.assetSvc.WorkspaceUsages(f.ctx, "ws1", "unused")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAssetService_WorkspaceUsages_MalformedProps(t *testing.T) {
	f := newFixture(t)

	page := f.page(t, "home")
	page.Blocks[0].Props = map[string]any{
		"assetId": 42,
		"list":    []any{nil, "x", map[string]any{"imageAssetId": "X"}},
	}
	f.savePage(t, page)

	usages, err := f.assetSvc.WorkspaceUsages(f.ctx, "ws1", "X")
	require.NoError(t, err)
	assert.Len(t, usages, 1)
}

func TestAssetService_Delete_Blocked(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, "X", "site1")

	page := f.page(t, "home")
	page.Blocks[0].Props["imageAssetId"] = "X"
	f.savePage(t, page)

	err := f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "X")
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	usages, ok := domain.DetailsOf(err).([]domain.AssetUsage)
	require.True(t, ok)
	assert.Len(t, usages, 1)

	asset, err := f.assets.Get(f.ctx, "X")
	require.NoError(t, err)
	assert.NotNil(t, asset)
}

func TestAssetService_Delete(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, "X", "site1")

	require.NoError(t, f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "X"))

	asset, err := f.assets.Get(f.ctx, "X")
	require.NoError(t, err)
	assert.Nil(t, asset)

	entries, err := f.audits.ListByWorkspace(f.ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionAssetDelete, entries[0].Action)
	assert.Equal(t, "X", entries[0].EntityID)
}

func TestAssetService_Delete_Errors(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, "foreign", "site2")

	err := f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "foreign")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "missing")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	err = f.assetSvc.Delete(f.ctx, viewer, "ws1", "site1", "foreign")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestAssetService_Delete_ScanErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, "X", "site1")

	pages := new(MockPageRepository)
	pages.On("ListBySite", mock.Anything, "site1").Return(nil, errors.New("timeout"))
	f.assetSvc.pages = pages

	err := f.assetSvc.Delete(f.ctx, editor, "ws1", "site1", "X")
	assert.Equal(t, domain.KindInfrastructure, domain.KindOf(err))

	asset, err := f.assets.Get(f.ctx, "X")
	require.NoError(t, err)
	assert.NotNil(t, asset, "asset must survive a failed scan")
}

func TestAssetService_Usages_Access(t *testing.T) {
	f := newFixture(t)

	usages, err := f.assetSvc.Usages(f.ctx, viewer, "ws1", "X")
	require.NoError(t, err)
	assert.Empty(t, usages)

	_, err = f.assetSvc.Usages(f.ctx, inactive, "ws1", "X")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
