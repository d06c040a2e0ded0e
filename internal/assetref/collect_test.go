package assetref

import (
	"encoding/json"
	"testing"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAssetKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"assetId", true},
		{"backgroundAssetId", true},
		{"AssetId", true},
		{"assetIds", false},
		{"asset", false},
		{"assetid", false},
		{"id", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAssetKey(tt.key))
		})
	}
}

func TestWalk_NestedJSON(t *testing.T) {
	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"media": {"assetId": "a1"},
		"items": [{"imageAssetId": "a2"}, {"caption": "x"}, {"assetId": ""}],
		"assetId": 42,
		"title": "assetId"
	}`), &props))

	var got []string
	Walk(props, IsAssetKey, func(m Match) { got = append(got, m.Value) })

	assert.ElementsMatch(t, []string{"a1", "a2"}, got)
}

func TestWalk_NonJSONShapes(t *testing.T) {
	props := map[string]any{
		"gallery": []map[string]string{{"assetId": "g1"}, {"assetId": "g2"}},
		"hero":    map[string]string{"backgroundAssetId": "h1"},
		"nested":  map[string]any{"slides": []map[string]any{{"imageAssetId": "s1"}}},
		"bad":     func() {},
	}

	var got []string
	Walk(props, IsAssetKey, func(m Match) { got = append(got, m.Value) })
	assert.ElementsMatch(t, []string{"g1", "g2", "h1", "s1"}, got, "an unmarshalable prop does not hide its siblings")

	got = nil
	Walk(func() {}, IsAssetKey, func(m Match) { got = append(got, m.Value) })
	assert.Empty(t, got)
}

func TestWalk_NilAndScalars(t *testing.T) {
	assert.NotPanics(t, func() {
		Walk(nil, IsAssetKey, func(Match) { t.Fatal("unexpected match") })
		Walk("assetId", IsAssetKey, func(Match) { t.Fatal("unexpected match") })
		Walk(3.5, IsAssetKey, func(Match) { t.Fatal("unexpected match") })
	})
}

func TestCollect(t *testing.T) {
	site := &domain.Site{
		ID: "site1",
		Header: domain.HeaderConfig{
			ActivePresetID: "dark",
			LogoAssetID:    "base-logo",
			Presets: []domain.HeaderPreset{
				{ID: "dark", Name: "Dark", LogoAssetID: "dark-logo"},
				{ID: "light", LogoAssetID: "light-logo"},
			},
		},
	}
	content := &domain.PageContent{
		SEO: domain.SEO{OGImageAssetID: "og"},
		Blocks: []domain.Block{
			{ID: "b1", SectionType: "hero", Variant: "centered", Props: map[string]any{"backgroundAssetId": "bg"}},
			{ID: "b2", SectionType: "gallery", Props: map[string]any{"media": map[string]any{"assetId": "m1"}}},
		},
	}

	t.Run("without presets", func(t *testing.T) {
		refs := Collect(site, content, false)
		assert.Equal(t, []domain.AssetReference{
			{AssetID: "dark-logo", Source: domain.SourceSiteHeader, Detail: "Site header logo"},
			{AssetID: "og", Source: domain.SourcePageSEO, Detail: "SEO share image"},
			{AssetID: "bg", Source: domain.SourcePageBlock, Detail: "Block 1 (hero.centered)"},
			{AssetID: "m1", Source: domain.SourcePageBlock, Detail: "Block 2 (gallery)"},
		}, refs)
	})

	t.Run("with presets", func(t *testing.T) {
		refs := Collect(site, nil, true)
		assert.Equal(t, []domain.AssetReference{
			{AssetID: "dark-logo", Source: domain.SourceSiteHeader, Detail: "Site header logo"},
			{AssetID: "base-logo", Source: domain.SourceSiteHeader, Detail: "Site base header logo"},
			{AssetID: "light-logo", Source: domain.SourceSiteHeaderPreset, Detail: `Header preset "light" logo`},
		}, refs)
	})

	t.Run("with presets and no active preset", func(t *testing.T) {
		base := *site
		base.Header.ActivePresetID = ""
		refs := Collect(&base, nil, true)
		assert.Equal(t, []domain.AssetReference{
			{AssetID: "base-logo", Source: domain.SourceSiteHeader, Detail: "Site header logo"},
			{AssetID: "dark-logo", Source: domain.SourceSiteHeaderPreset, Detail: `Header preset "Dark" logo`},
			{AssetID: "light-logo", Source: domain.SourceSiteHeaderPreset, Detail: `Header preset "light" logo`},
		}, refs)
	})

	t.Run("unknown active preset", func(t *testing.T) {
		stale := *site
		stale.Header.ActivePresetID = "gone"
		refs := Collect(&stale, nil, true)
		require.Len(t, refs, 3)
		assert.Equal(t, "base-logo", refs[0].AssetID)
		assert.Equal(t, domain.SourceSiteHeader, refs[0].Source)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Collect(site, content, true), Collect(site, content, true))
	})

	t.Run("nil inputs", func(t *testing.T) {
		assert.Empty(t, Collect(nil, nil, true))
	})
}

func TestCandidateID(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"a1b2", "a1b2"},
		{"a1b2.png", "a1b2"},
		{"a1b2/logo.png", "a1b2"},
		{"/a1b2.jpg?w=200", "a1b2"},
		{".png", ".png"},
		{"", ""},
		{"../etc/passwd", ""},
		{"a\\b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateID(tt.ref))
		})
	}
}
