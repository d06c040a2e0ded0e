package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/repository/document"
	"github.com/Rrens/sitepublish/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRepository_DraftAndPointerAreDisjoint(t *testing.T) {
	ctx := context.Background()
	repo := document.NewPageRepository(memory.NewStore())

	require.NoError(t, repo.Save(ctx, &domain.Page{
		ID:           "home",
		SiteID:       "site1",
		PageContent:  domain.PageContent{Title: "Home"},
		DraftVersion: 1,
	}))

	publishedAt := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetPublishedPointer(ctx, "home", "v1", publishedAt, false))

	page, err := repo.Get(ctx, "home")
	require.NoError(t, err)
	page.Title = "Draft title"
	page.Blocks = nil
	page.DraftVersion = 2
	require.NoError(t, repo.SaveDraft(ctx, page))

	got, err := repo.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Draft title", got.Title)
	assert.Equal(t, 2, got.DraftVersion)
	assert.NotNil(t, got.Blocks)
	assert.True(t, got.HasUnpublishedChanges)
	assert.Equal(t, "v1", got.PublishedVersionID)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, publishedAt.Equal(*got.PublishedAt))
	assert.Equal(t, "site1", got.SiteID)

	require.NoError(t, repo.SetPublishedPointer(ctx, "home", "v2", publishedAt.Add(time.Hour), false))
	got, err = repo.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.PublishedVersionID)
	assert.False(t, got.HasUnpublishedChanges)
	assert.Equal(t, "Draft title", got.Title)
}

func TestPageRepository_SetPublishedPointer(t *testing.T) {
	ctx := context.Background()
	repo := document.NewPageRepository(memory.NewStore())

	err := repo.SetPublishedPointer(ctx, "gone", "v1", time.Now(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	page, err := repo.Get(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, page, "no stub page is created")

	require.NoError(t, repo.Save(ctx, &domain.Page{ID: "home", SiteID: "site1"}))
	require.NoError(t, repo.SetPublishedPointer(ctx, "home", "v1", time.Now(), true))
	page, err = repo.Get(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "v1", page.PublishedVersionID)
	assert.True(t, page.HasUnpublishedChanges)
}

func TestPageRepository_ListBySite(t *testing.T) {
	ctx := context.Background()
	repo := document.NewPageRepository(memory.NewStore())

	for _, p := range []domain.Page{
		{ID: "b", SiteID: "site1"},
		{ID: "x", SiteID: "site2"},
		{ID: "a", SiteID: "site1"},
	} {
		require.NoError(t, repo.Save(ctx, &p))
	}

	pages, err := repo.ListBySite(ctx, "site1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "b", pages[0].ID)
	assert.Equal(t, "a", pages[1].ID)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSnapshotRepository_CreateOnce(t *testing.T) {
	ctx := context.Background()
	repo := document.NewSnapshotRepository(memory.NewStore())

	snap := &domain.Snapshot{ID: "v1", SiteID: "site1", PageID: "home", Version: 1}
	require.NoError(t, repo.Create(ctx, snap))

	snap.Version = 99
	assert.Error(t, repo.Create(ctx, snap))

	got, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)

	list, err := repo.ListBySite(ctx, "site1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := repo.ListBySite(ctx, "site2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestAlertRepository_ListByWorkspace(t *testing.T) {
	ctx := context.Background()
	repo := document.NewAlertRepository(memory.NewStore())

	for _, a := range []domain.Alert{
		{ID: "1", WorkspaceID: "ws1", Status: domain.AlertOpen, Category: "publish", SiteID: "s1"},
		{ID: "2", WorkspaceID: "ws1", Status: domain.AlertResolved, Category: "publish", SiteID: "s2"},
		{ID: "3", WorkspaceID: "ws2", Status: domain.AlertOpen, Category: "publish", SiteID: "s1"},
	} {
		require.NoError(t, repo.Create(ctx, &a))
	}

	tests := []struct {
		name   string
		filter domain.AlertFilter
		want   []string
	}{
		{"all", domain.AlertFilter{}, []string{"1", "2"}},
		{"status", domain.AlertFilter{Status: "open"}, []string{"1"}},
		{"site", domain.AlertFilter{SiteID: "s2"}, []string{"2"}},
		{"category", domain.AlertFilter{Category: "billing"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.ListByWorkspace(ctx, "ws1", tt.filter)
			require.NoError(t, err)
			ids := []string{}
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestWorkspaceRepository_Membership(t *testing.T) {
	ctx := context.Background()
	repo := document.NewWorkspaceRepository(memory.NewStore())

	require.NoError(t, repo.SaveMembership(ctx, &domain.Membership{
		WorkspaceID: "ws1", UserID: "u1", Role: domain.RoleAdmin, Status: domain.MembershipActive,
	}))

	m, err := repo.GetMembership(ctx, "ws1", "u1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, domain.RoleAdmin, m.Role)

	m, err = repo.GetMembership(ctx, "ws2", "u1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestAssetRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := document.NewAssetRepository(memory.NewStore())

	require.NoError(t, repo.Save(ctx, &domain.Asset{ID: "a1", SiteID: "site1"}))
	require.NoError(t, repo.Delete(ctx, "a1"))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
