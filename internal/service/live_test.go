package service

import (
	"testing"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
		ok       bool
	}{
		{"empty", nil, "", true},
		{"root", []string{"/"}, "", true},
		{"single", []string{"about"}, "about", true},
		{"slashes trimmed", []string{"/about/team/"}, "about/team", true},
		{"duplicate slashes", []string{"about//team"}, "about/team", true},
		{"joined segments", []string{"blog", "2024", "post"}, "blog/2024/post", true},
		{"whitespace segments", []string{" about ", " "}, "about", true},
		{"dot", []string{"./about"}, "", false},
		{"traversal", []string{"about/../admin"}, "", false},
		{"backslash", []string{`about\team`}, "", false},
		{"nul", []string{"about\x00"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePath(tt.segments...)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiveService_ResolvePage_PublishLifecycle(t *testing.T) {
	f := newFixture(t)

	resolved, err := f.live.ResolvePage(f.ctx, "demo", "/")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	snapshot, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	resolved, err = f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "site1", resolved.Site.ID)
	assert.Equal(t, "home", resolved.Page.ID)
	assert.Equal(t, snapshot.ID, resolved.Page.VersionID)
	assert.Equal(t, 1, resolved.Page.Version)
	assert.Equal(t, "Hello", resolved.Page.Blocks[0].Props["heading"])
	assert.Len(t, resolved.NavigationItems, 1)

	history, err := f.history.ListVersions(f.ctx, "site1", "home", 0)
	require.NoError(t, err)
	require.Len(t, history.Versions, 1)
	assert.True(t, history.Versions[0].IsCurrentPublishedVersion)
}

func TestLiveService_ResolvePage_IgnoresDrafts(t *testing.T) {
	f := newFixture(t)

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	_, err = f.drafts.Save(f.ctx, editor, "ws1", "site1", "home", domain.DraftUpdate{
		Title:  "Home v2",
		SEO:    domain.SEO{Title: "Home", Description: "Welcome"},
		Blocks: []domain.Block{{ID: "b9", SectionType: "text", Props: map[string]any{"body": "draft only"}}},
	})
	require.NoError(t, err)

	// bypass the cache
	f.live.cache = nil
	resolved, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "Home", resolved.Page.Title)
	assert.Equal(t, "b1", resolved.Page.Blocks[0].ID)
}

func TestLiveService_ResolvePage_DraftPathNotServed(t *testing.T) {
	f := newFixture(t)
	f.live.cache = nil

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	_, err = f.drafts.Save(f.ctx, editor, "ws1", "site1", "home", domain.DraftUpdate{
		Title:  "Moved",
		Path:   "secret-draft-path",
		SEO:    domain.SEO{Title: "Home", Description: "Welcome"},
		Blocks: []domain.Block{{ID: "b9", SectionType: "text"}},
	})
	require.NoError(t, err)

	resolved, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "Home", resolved.Page.Title)

	resolved, err = f.live.ResolvePage(f.ctx, "demo", "secret-draft-path")
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// once published, the page moves
	_, err = f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	resolved, err = f.live.ResolvePage(f.ctx, "demo", "secret-draft-path")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "Moved", resolved.Page.Title)

	resolved, err = f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestLiveService_ResolvePage_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	for _, tt := range []struct{ slug, path string }{
		{"unknown", ""},
		{"", ""},
		{"demo", "missing"},
		{"demo", "../etc/passwd"},
	} {
		resolved, err := f.live.ResolvePage(f.ctx, tt.slug, tt.path)
		require.NoError(t, err)
		assert.Nil(t, resolved, "%s %s", tt.slug, tt.path)
	}
	assert.Equal(t, 0, f.cache.size(), "not-found is never cached")
}

func TestLiveService_ResolvePage_EmptySnapshot(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.snapshots.Create(f.ctx, &domain.Snapshot{
		ID: "empty", WorkspaceID: "ws1", SiteID: "site1", PageID: "home", Version: 1,
		Content: domain.PageContent{Title: "Home", Blocks: []domain.Block{}},
	}))
	require.NoError(t, f.pages.SetPublishedPointer(f.ctx, "home", "empty", time.Now(), false))

	resolved, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestLiveService_ResolvePage_ForeignSnapshot(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.snapshots.Create(f.ctx, &domain.Snapshot{
		ID: "foreign", WorkspaceID: "ws2", SiteID: "site2", PageID: "home", Version: 1,
		Content: domain.PageContent{Blocks: []domain.Block{{ID: "x", SectionType: "text"}}},
	}))
	require.NoError(t, f.pages.SetPublishedPointer(f.ctx, "home", "foreign", time.Now(), false))

	resolved, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestLiveService_ResolvePage_SharedSlug(t *testing.T) {
	f := newFixture(t)

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	require.NoError(t, f.workspaces.Save(f.ctx, &domain.Workspace{ID: "ws2", Name: "Other"}))
	require.NoError(t, f.workspaces.SaveMembership(f.ctx, &domain.Membership{
		WorkspaceID: "ws2", UserID: owner.UserID, Role: domain.RoleOwner, Status: domain.MembershipActive,
	}))
	require.NoError(t, f.sites.Save(f.ctx, &domain.Site{
		ID: "site2", WorkspaceID: "ws2", Slug: "demo", Name: "Newer",
		UpdatedAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	f.savePage(t, &domain.Page{
		ID: "home2", SiteID: "site2", WorkspaceID: "ws2",
		PageContent: domain.PageContent{
			Title:  "Newer home",
			SEO:    domain.SEO{Title: "Newer", Description: "Newer site"},
			Blocks: []domain.Block{{ID: "n1", SectionType: "text"}},
		},
		DraftVersion: 1,
	})
	_, err = f.publish.Publish(f.ctx, owner, "ws2", "site2", "home2")
	require.NoError(t, err)

	resolved, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "site2", resolved.Site.ID)
	assert.Equal(t, "Newer home", resolved.Page.Title)
}

func TestPickMostRecent_TieKeepsFirst(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sites := []domain.Site{
		{ID: "first", UpdatedAt: at},
		{ID: "second", UpdatedAt: at},
		{ID: "old", CreatedAt: at.Add(-time.Hour)},
	}
	assert.Equal(t, "first", pickMostRecent(sites).ID)
	assert.Nil(t, pickMostRecent(nil))
}

func TestLiveService_ResolvePage_Cache(t *testing.T) {
	f := newFixture(t)

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	first, err := f.live.ResolvePage(f.ctx, "demo", "/")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, f.cache.size())

	cached, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	assert.Same(t, first, cached)

	// a new publish invalidates the site
	_, err = f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.size())

	fresh, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Page.Version)
}

func TestLiveService_ResolvePage_InvalidatedWhileResolving(t *testing.T) {
	f := newFixture(t)

	_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
	require.NoError(t, err)

	// a publish lands between the resolution and the cache write
	f.cache.beforeSet = func() {
		_, err := f.publish.Publish(f.ctx, editor, "ws1", "site1", "home")
		require.NoError(t, err)
	}

	stale, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.Equal(t, 1, stale.Page.Version)

	fresh, err := f.live.ResolvePage(f.ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, 2, fresh.Page.Version)
}

func TestLiveService_ResolveAsset(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.assets.Save(f.ctx, &domain.Asset{ID: "logo", SiteID: "site1", WorkspaceID: "ws1", StoragePath: "sites/site1/logo.png"}))
	require.NoError(t, f.assets.Save(f.ctx, &domain.Asset{ID: "other", SiteID: "site2", WorkspaceID: "ws2", StoragePath: "sites/site2/x.png"}))

	tests := []struct {
		name string
		slug string
		ref  string
		want string
	}{
		{"by id", "demo", "logo", "https://cdn.example.com/sites/site1/logo.png?sig=1"},
		{"with extension", "demo", "logo.png", "https://cdn.example.com/sites/site1/logo.png?sig=1"},
		{"foreign site", "demo", "other", ""},
		{"unknown asset", "demo", "nope", ""},
		{"unknown slug", "nowhere", "logo", ""},
		{"traversal", "demo", "../logo", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.live.ResolveAsset(f.ctx, tt.slug, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
