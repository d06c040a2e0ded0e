package assetref

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/Rrens/sitepublish/internal/domain"
)

// Collect enumerates the asset references of a site and, when content is non-nil,
// of a page. Either argument may be nil. Malformed props yield no references.
func Collect(site *domain.Site, content *domain.PageContent, includeHeaderPresets bool) []domain.AssetReference {
	var refs []domain.AssetReference

	if site != nil {
		refs = append(refs, collectSite(site, includeHeaderPresets)...)
	}
	if content != nil {
		refs = append(refs, collectPage(content)...)
	}

	return refs
}

func collectSite(site *domain.Site, includePresets bool) []domain.AssetReference {
	var refs []domain.AssetReference

	header := site.ActiveHeader()
	if id := strings.TrimSpace(header.LogoAssetID); id != "" {
		refs = append(refs, domain.AssetReference{
			AssetID: id,
			Source:  domain.SourceSiteHeader,
			Detail:  "Site header logo",
		})
	}

	if !includePresets {
		return refs
	}

	// The base logo is still in use while a preset overrides it.
	if header.PresetID != "" {
		if id := strings.TrimSpace(site.Header.LogoAssetID); id != "" {
			refs = append(refs, domain.AssetReference{
				AssetID: id,
				Source:  domain.SourceSiteHeader,
				Detail:  "Site base header logo",
			})
		}
	}

	for _, preset := range site.Header.Presets {
		id := strings.TrimSpace(preset.LogoAssetID)
		if id == "" || preset.ID == header.PresetID {
			continue
		}
		name := preset.Name
		if name == "" {
			name = preset.ID
		}
		refs = append(refs, domain.AssetReference{
			AssetID: id,
			Source:  domain.SourceSiteHeaderPreset,
			Detail:  fmt.Sprintf("Header preset %q logo", name),
		})
	}

	return refs
}

func collectPage(content *domain.PageContent) []domain.AssetReference {
	var refs []domain.AssetReference

	if id := strings.TrimSpace(content.SEO.OGImageAssetID); id != "" {
		refs = append(refs, domain.AssetReference{
			AssetID: id,
			Source:  domain.SourcePageSEO,
			Detail:  "SEO share image",
		})
	}

	for i, block := range content.Blocks {
		detail := fmt.Sprintf("Block %d (%s)", i+1, block.Label())
		Walk(block.Props, IsAssetKey, func(m Match) {
			refs = append(refs, domain.AssetReference{
				AssetID: m.Value,
				Source:  domain.SourcePageBlock,
				Detail:  detail,
			})
		})
	}

	return refs
}

// CandidateID derives an asset id from an opaque media reference such as
// "a1b2c3.png" or "a1b2c3/logo.png"
func CandidateID(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.Trim(ref, "/")
	if ref == "" || strings.Contains(ref, "..") || strings.ContainsAny(ref, "\\\x00") {
		return ""
	}
	if i := strings.Index(ref, "/"); i >= 0 {
		ref = ref[:i]
	}
	if ext := path.Ext(ref); ext != "" && ext != ref {
		ref = strings.TrimSuffix(ref, ext)
	}
	return ref
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
