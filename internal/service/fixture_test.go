package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/repository/document"
	"github.com/Rrens/sitepublish/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var (
	owner    = domain.Caller{UserID: "owner1"}
	editor   = domain.Caller{UserID: "user1"}
	viewer   = domain.Caller{UserID: "viewer1"}
	inactive = domain.Caller{UserID: "inactive1"}
)

// fixture wires every service to one in-memory document store seeded with
// workspace ws1, site site1 (slug "demo") and page home (path "", one block)
type fixture struct {
	ctx   context.Context
	store *memory.Store

	workspaces *document.WorkspaceRepository
	sites      *document.SiteRepository
	pages      *document.PageRepository
	snapshots  *document.SnapshotRepository
	assets     *document.AssetRepository
	alerts     *document.AlertRepository
	audits     *document.AuditLogRepository

	cache  *fakeCache
	signer *fakeSigner
	clock  clock

	access   *AccessService
	audit    *AuditService
	alertSvc *AlertService
	checks   *PrePublishService
	publish  *PublishService
	history  *HistoryService
	live     *LiveService
	assetSvc *AssetService
	drafts   *DraftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	f := &fixture{
		ctx:        context.Background(),
		store:      store,
		workspaces: document.NewWorkspaceRepository(store),
		sites:      document.NewSiteRepository(store),
		pages:      document.NewPageRepository(store),
		snapshots:  document.NewSnapshotRepository(store),
		assets:     document.NewAssetRepository(store),
		alerts:     document.NewAlertRepository(store),
		audits:     document.NewAuditLogRepository(store),
		cache:      newFakeCache(),
		signer:     &fakeSigner{},
		clock:      tickingClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
	}

	f.access = NewAccessService(f.workspaces)
	f.audit = NewAuditService(f.audits, nil)
	f.audit.clock = f.clock
	f.alertSvc = NewAlertService(f.access, f.alerts, f.audit, 50, 200)
	f.alertSvc.clock = f.clock
	f.checks = NewPrePublishService(f.access, f.sites, f.pages, f.assets, nil, nil)
	f.publish = NewPublishService(PublishDeps{
		Access:    f.access,
		Sites:     f.sites,
		Pages:     f.pages,
		Snapshots: f.snapshots,
		Checks:    f.checks,
		Alerts:    f.alertSvc,
		Audit:     f.audit,
		Cache:     f.cache,
	})
	f.publish.clock = f.clock
	f.history = NewHistoryService(f.access, f.sites, f.pages, f.snapshots, 25, 200)
	f.live = NewLiveService(f.sites, f.pages, f.snapshots, f.assets, f.cache, f.signer, nil)
	f.assetSvc = NewAssetService(f.access, f.sites, f.pages, f.assets, f.audit, time.Second)
	f.drafts = NewDraftService(f.access, f.sites, f.pages, f.audit)
	f.drafts.clock = f.clock

	f.seed(t)
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := f.ctx
	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.workspaces.Save(ctx, &domain.Workspace{ID: "ws1", Name: "Workspace", CreatedAt: created}))
	for _, m := range []domain.Membership{
		{UserID: owner.UserID, Role: domain.RoleOwner, Status: domain.MembershipActive},
		{UserID: editor.UserID, Role: domain.RoleEditor, Status: domain.MembershipActive},
		{UserID: viewer.UserID, Role: domain.RoleViewer, Status: domain.MembershipActive},
		{UserID: inactive.UserID, Role: domain.RoleOwner, Status: domain.MembershipInactive},
	} {
		m.WorkspaceID = "ws1"
		require.NoError(t, f.workspaces.SaveMembership(ctx, &m))
	}

	require.NoError(t, f.sites.Save(ctx, &domain.Site{
		ID:          "site1",
		WorkspaceID: "ws1",
		Slug:        "demo",
		Name:        "Demo",
		NavigationItems: []domain.NavigationItem{
			{ID: "n1", Label: "Home", Href: "/"},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}))

	f.savePage(t, &domain.Page{
		ID:          "home",
		SiteID:      "site1",
		WorkspaceID: "ws1",
		PageContent: domain.PageContent{
			Title: "Home",
			Path:  "",
			SEO:   domain.SEO{Title: "Home", Description: "Welcome"},
			Blocks: []domain.Block{
				{ID: "b1", SectionType: "hero", Variant: "centered", Props: map[string]any{"heading": "Hello"}},
			},
		},
		DraftVersion:          1,
		HasUnpublishedChanges: true,
		CreatedAt:             created,
		UpdatedAt:             created,
	})
}

func (f *fixture) savePage(t *testing.T, page *domain.Page) {
	t.Helper()
	require.NoError(t, f.pages.Save(f.ctx, page))
}

func (f *fixture) page(t *testing.T, id string) *domain.Page {
	t.Helper()
	page, err := f.pages.Get(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, page)
	return page
}

func (f *fixture) snapshotsOf(t *testing.T, pageID string) []domain.Snapshot {
	t.Helper()
	all, err := f.snapshots.ListBySite(f.ctx, "site1")
	require.NoError(t, err)
	var out []domain.Snapshot
	for _, s := range all {
		if s.PageID == pageID {
			out = append(out, s)
		}
	}
	return out
}

func tickingClock(start time.Time) clock {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.LivePage
	generations map[string]int64
	invalidated []string
	// beforeSet runs ahead of a write, outside the lock
	beforeSet func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     make(map[string]*domain.LivePage),
		generations: make(map[string]int64),
	}
}

func (c *fakeCache) Get(ctx context.Context, siteSlug, path string) (*domain.LivePage, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[siteSlug]
	return c.entries[fmt.Sprintf("%s|%d|%s", siteSlug, gen, path)], gen, nil
}

func (c *fakeCache) Set(ctx context.Context, siteSlug, path string, generation int64, page *domain.LivePage) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%s|%d|%s", siteSlug, generation, path)] = page
	return nil
}

func (c *fakeCache) InvalidateSite(ctx context.Context, siteSlug string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, siteSlug)
	c.generations[siteSlug]++
	var n int64
	for k := range c.entries {
		if len(k) > len(siteSlug) && k[:len(siteSlug)+1] == siteSlug+"|" {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(ctx context.Context, asset *domain.Asset) (string, error) {
	return fmt.Sprintf("https://cdn.example.com/%s?sig=1", asset.StoragePath), nil
}
