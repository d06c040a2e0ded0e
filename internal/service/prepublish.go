package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Rrens/sitepublish/internal/assetref"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
)

// Check names, in report order
const (
	CheckSEOTitle        = "seo-title"
	CheckSEODescription  = "seo-description"
	CheckBlocksPresent   = "blocks-present"
	CheckBlocksValid     = "blocks-valid"
	CheckAssetReferences = "asset-references"
	CheckOGImageURL      = "og-image-url"
)

// PrePublishService runs the read-only publish checklist against a page draft
type PrePublishService struct {
	access  *AccessService
	sites   domain.SiteRepository
	pages   domain.PageRepository
	assets  domain.AssetRepository
	urls    URLChecker
	metrics *metrics.ServerMetrics
}

// NewPrePublishService creates a new pre-publish service
func NewPrePublishService(
	access *AccessService,
	sites domain.SiteRepository,
	pages domain.PageRepository,
	assets domain.AssetRepository,
	urls URLChecker,
	m *metrics.ServerMetrics,
) *PrePublishService {
	return &PrePublishService{
		access:  access,
		sites:   sites,
		pages:   pages,
		assets:  assets,
		urls:    urls,
		metrics: m,
	}
}

// Check runs the checklist on behalf of a workspace member
func (s *PrePublishService) Check(ctx context.Context, caller domain.Caller, workspaceID, siteID, pageID string) (*domain.PrePublishReport, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AnyMemberRoles); err != nil {
		return nil, err
	}
	if _, err := loadSite(ctx, s.sites, workspaceID, siteID); err != nil {
		return failedReport(err), err
	}
	return s.Run(ctx, siteID, pageID)
}

// Run loads the page and evaluates every check. The returned report is always
// non-nil; OK is false when the checks could not run, with err describing why.
func (s *PrePublishService) Run(ctx context.Context, siteID, pageID string) (*domain.PrePublishReport, error) {
	site, err := loadSite(ctx, s.sites, "", siteID)
	if err != nil {
		return failedReport(err), err
	}
	page, err := loadPage(ctx, s.pages, siteID, pageID)
	if err != nil {
		return failedReport(err), err
	}

	return s.evaluate(ctx, site, page)
}

func (s *PrePublishService) evaluate(ctx context.Context, site *domain.Site, page *domain.Page) (*domain.PrePublishReport, error) {
	assetCheck, err := s.checkAssets(ctx, site, page)
	if err != nil {
		return failedReport(err), err
	}

	checks := []domain.CheckResult{
		requireField(CheckSEOTitle, "SEO title", page.SEO.Title),
		requireField(CheckSEODescription, "SEO description", page.SEO.Description),
		checkBlocksPresent(page.Blocks),
		checkBlocksValid(page.Blocks),
		assetCheck,
		s.checkOGImageURL(ctx, page.SEO.OGImageURL),
	}

	valid := true
	for _, c := range checks {
		valid = valid && c.Passed
	}
	s.metrics.IncValidation(valid)

	return &domain.PrePublishReport{OK: true, Valid: valid, Checks: checks}, nil
}

func requireField(name, label, value string) domain.CheckResult {
	if strings.TrimSpace(value) == "" {
		return domain.CheckResult{Name: name, Passed: false, Message: label + " is missing"}
	}
	return domain.CheckResult{Name: name, Passed: true, Message: label + " is set"}
}

func checkBlocksPresent(blocks []domain.Block) domain.CheckResult {
	if len(blocks) == 0 {
		return domain.CheckResult{Name: CheckBlocksPresent, Passed: false, Message: "Page has no content blocks"}
	}
	return domain.CheckResult{Name: CheckBlocksPresent, Passed: true, Message: fmt.Sprintf("Page has %d content blocks", len(blocks))}
}

func checkBlocksValid(blocks []domain.Block) domain.CheckResult {
	var problems []string
	for i, b := range blocks {
		if err := validate.Struct(b); err != nil {
			problems = append(problems, fmt.Sprintf("Block %d is missing an id or section type", i+1))
		}
	}
	if len(problems) > 0 {
		return domain.CheckResult{Name: CheckBlocksValid, Passed: false, Message: strings.Join(problems, "; ")}
	}
	return domain.CheckResult{Name: CheckBlocksValid, Passed: true, Message: "All blocks are well formed"}
}

// checkAssets verifies that every asset referenced by the page and the active
// header exists and belongs to the site
func (s *PrePublishService) checkAssets(ctx context.Context, site *domain.Site, page *domain.Page) (domain.CheckResult, error) {
	refs := assetref.Collect(site, &page.PageContent, false)

	known := make(map[string]bool, len(refs))
	var missing []string
	for _, ref := range refs {
		ok, seen := known[ref.AssetID]
		if !seen {
			asset, err := s.assets.Get(ctx, ref.AssetID)
			if err != nil {
				return domain.CheckResult{}, domain.Infrastructure("failed to load asset", err)
			}
			ok = asset != nil && asset.SiteID == site.ID
			known[ref.AssetID] = ok
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("%s references missing asset %s", ref.Detail, ref.AssetID))
		}
	}

	if len(missing) > 0 {
		return domain.CheckResult{Name: CheckAssetReferences, Passed: false, Message: strings.Join(missing, "; ")}, nil
	}
	return domain.CheckResult{
		Name:    CheckAssetReferences,
		Passed:  true,
		Message: fmt.Sprintf("All %d asset references resolve", len(refs)),
	}, nil
}

func (s *PrePublishService) checkOGImageURL(ctx context.Context, raw string) domain.CheckResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.CheckResult{Name: CheckOGImageURL, Passed: true, Message: "No external share image"}
	}
	if !isAbsoluteHTTPURL(raw) {
		return domain.CheckResult{Name: CheckOGImageURL, Passed: false, Message: "Share image URL must be an absolute http(s) URL"}
	}
	if s.urls == nil {
		return domain.CheckResult{Name: CheckOGImageURL, Passed: true, Message: "Share image URL not probed"}
	}
	if err := s.urls.Check(ctx, raw); err != nil {
		return domain.CheckResult{Name: CheckOGImageURL, Passed: false, Message: "Share image URL is unreachable: " + err.Error()}
	}
	return domain.CheckResult{Name: CheckOGImageURL, Passed: true, Message: "Share image URL is reachable"}
}

func failedReport(err error) *domain.PrePublishReport {
	report := &domain.PrePublishReport{OK: false, Checks: []domain.CheckResult{}}
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		report.Error = err.Error()
		report.StatusCode = http.StatusNotFound
	default:
		report.Error = "pre-publish checks could not run"
		report.StatusCode = http.StatusInternalServerError
	}
	return report
}
