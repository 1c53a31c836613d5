package scraper

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
)

// Fetcher is the page-retrieval capability the pipeline consumes. fetch.Client
// is the production implementation; tests substitute stubs.
type Fetcher interface {
	Static(ctx context.Context, pageURL string) (string, error)
	Rendered(ctx context.Context, pageURL, waitSelector string) (string, error)
	SitemapURLs(ctx context.Context, sitemaps []string) []string
}

// TilePrices is what an archive tile published for one listing. Some brokers
// print a price on the tile that the detail page omits, so the orchestrator
// uses these to backstop extraction.
type TilePrices struct {
	AskingPrice    *float64
	AppraisedValue *float64
}

// renderThreshold: an index page that yields fewer links than this was almost
// certainly client-rendered, so it gets re-fetched through the browser.
const renderThreshold = 5

var (
	appraisedLabelRe    = regexp.MustCompile(`(?i)apprais(?:ed|al)\s*value`)
	listingPriceLabelRe = regexp.MustCompile(`(?i)(?:practice\s*)?listing\s*price|^price$`)
)

// discoverDetailURLs harvests candidate detail-page URLs for one broker.
// Brokers with a paginated archive walk it page by page, pre-harvesting tile
// prices along the way. Sitemap-first brokers read the sitemaps and merge
// index links in unconditionally; the rest go index-first with the sitemaps
// as a supplement when the harvest is thin. All paths share host/filter
// cleanup, ordered dedup and the politeness cap.
func discoverDetailURLs(ctx context.Context, f Fetcher, cfg *config.BrokerConfig) ([]string, map[string]TilePrices, error) {
	if cfg.ArchivePages > 0 {
		return discoverArchivePages(ctx, f, cfg)
	}

	var links []string
	if cfg.SitemapFirst {
		for _, u := range f.SitemapURLs(ctx, cfg.Sitemaps) {
			if keepSitemapURL(u, cfg.LinkFilters) {
				links = append(links, u)
			}
		}
	}

	// Index links are always merged in: some listings never make the sitemap.
	links = append(links, indexLinks(ctx, f, cfg)...)

	if !cfg.SitemapFirst && len(links) < renderThreshold && len(cfg.Sitemaps) > 0 {
		for _, u := range f.SitemapURLs(ctx, cfg.Sitemaps) {
			if keepSitemapURL(u, cfg.LinkFilters) {
				links = append(links, u)
			}
		}
	}

	links = dedupOrdered(links)
	if len(links) > cfg.MaxLinks {
		links = links[:cfg.MaxLinks]
	}

	if len(links) == 0 {
		return nil, nil, fmt.Errorf("broker %s: no working index or sitemap source", cfg.ID)
	}
	return links, nil, nil
}

// indexLinks fetches the first index candidate that answers, re-fetching
// through the browser when the static harvest looks client-rendered.
func indexLinks(ctx context.Context, f Fetcher, cfg *config.BrokerConfig) []string {
	var (
		html    string
		usedURL string
	)
	for _, candidate := range cfg.IndexCandidates {
		h, err := f.Static(ctx, candidate)
		if err != nil {
			log.Printf("[%s] index candidate failed: %s: %v", cfg.ID, candidate, err)
			continue
		}
		html, usedURL = h, candidate
		break
	}
	if usedURL == "" {
		return nil
	}

	links := harvestLinks(html)
	if len(links) < renderThreshold {
		wait := cfg.WaitSelectorIndex
		if wait == "" {
			wait = "a"
		}
		if rendered, err := f.Rendered(ctx, usedURL, wait); err == nil {
			links = harvestLinks(rendered)
		} else {
			log.Printf("[%s] rendered index fetch failed: %v", cfg.ID, err)
		}
	}
	return cleanLinks(usedURL, links, cfg.LinkFilters)
}

// discoverArchivePages walks a paginated archive (/page/2/, /page/3/, ...)
// through the browser, collecting detail links and tile prices until a page
// yields nothing new or the page budget runs out.
func discoverArchivePages(ctx context.Context, f Fetcher, cfg *config.BrokerConfig) ([]string, map[string]TilePrices, error) {
	if len(cfg.IndexCandidates) == 0 {
		return nil, nil, fmt.Errorf("broker %s: no archive URL configured", cfg.ID)
	}
	archive := cfg.IndexCandidates[0]
	wait := cfg.WaitSelectorIndex
	if wait == "" {
		wait = "body"
	}

	var urls []string
	tiles := make(map[string]TilePrices)

	for page := 1; page <= cfg.ArchivePages; page++ {
		pageURL := archive
		if page > 1 {
			pageURL = strings.TrimRight(archive, "/") + fmt.Sprintf("/page/%d/", page)
		}

		html, err := f.Rendered(ctx, pageURL, wait)
		if err != nil {
			if page == 1 {
				return nil, nil, fmt.Errorf("broker %s: archive fetch failed: %w", cfg.ID, err)
			}
			break
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			break
		}

		foundNew := false
		archiveTileSelection(doc).Each(func(_ int, tile *goquery.Selection) {
			u := tileDetailURL(tile, pageURL, cfg.LinkFilters)
			if u == "" {
				return
			}
			if _, ok := tiles[u]; ok {
				return
			}
			tiles[u] = tilePrices(tile)
			urls = append(urls, u)
			foundNew = true
		})
		// A page past the last one renders the archive shell with no new tiles.
		if !foundNew {
			break
		}
	}

	if len(urls) > cfg.MaxLinks {
		urls = urls[:cfg.MaxLinks]
	}
	if len(urls) == 0 {
		return nil, nil, fmt.Errorf("broker %s: archive yielded no listings", cfg.ID)
	}
	return urls, tiles, nil
}

// archiveTileSelection finds per-listing tile containers, falling back to
// plain divs on themes without recognizable post markup.
func archiveTileSelection(doc *goquery.Document) *goquery.Selection {
	sel := doc.Find("article, .elementor-post, .e-loop-item, .elementor-grid-item, .post")
	if sel.Length() == 0 {
		sel = doc.Find("div")
	}
	return sel
}

// tileDetailURL resolves the tile's first anchor, keeping only on-filter
// detail pages and never the archive itself.
func tileDetailURL(tile *goquery.Selection, pageURL string, filters []string) string {
	href, ok := tile.Find("a").First().Attr("href")
	if !ok || href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref).String()
	if strings.Contains(abs, "#") {
		return ""
	}
	if len(filters) > 0 && !matchesAnyFilter(abs, filters) {
		return ""
	}
	if isArchiveURL(abs, filters) {
		return ""
	}
	return abs
}

// tilePrices pairs price labels with amounts inside one tile: the labeled
// node's own text first, adjacent siblings second. Amounts under $100k are
// footnote noise.
func tilePrices(tile *goquery.Selection) TilePrices {
	var p TilePrices
	tile.Find(".elementor-icon-list-item, .elementor-post__excerpt, .elementor-widget-text-editor, li, p, div, span, strong, b").
		EachWithBreak(func(_ int, node *goquery.Selection) bool {
			text := cleanText(node.Text())
			if text == "" {
				return true
			}
			if p.AppraisedValue == nil && appraisedLabelRe.MatchString(text) {
				p.AppraisedValue = tileMoney(text, node)
			}
			if p.AskingPrice == nil && listingPriceLabelRe.MatchString(text) {
				p.AskingPrice = tileMoney(text, node)
			}
			return p.AppraisedValue == nil || p.AskingPrice == nil
		})
	return p
}

func tileMoney(text string, node *goquery.Selection) *float64 {
	if v := parseMoney(text); v != nil && *v >= 100_000 {
		return v
	}
	if v := parseMoney(neighborBundle(node)); v != nil && *v >= 100_000 {
		return v
	}
	return nil
}

// harvestLinks pulls every anchor href out of an index page.
func harvestLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			links = append(links, href)
		}
	})
	return links
}

// cleanLinks resolves hrefs against the index URL and applies the host and
// substring filters. Fragment-only links, anchor URLs and the bare archive
// page itself are discarded.
func cleanLinks(baseURL string, hrefs, filters []string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	baseHost := base.Hostname()

	var out []string
	for _, href := range hrefs {
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref).String()
		if strings.Contains(abs, "#") {
			continue
		}
		if h := hostOf(abs); baseHost != "" && !strings.Contains(h, baseHost) {
			continue
		}
		if len(filters) > 0 && !matchesAnyFilter(abs, filters) {
			continue
		}
		if isArchiveURL(abs, filters) {
			continue
		}
		out = append(out, abs)
	}
	return out
}

// keepSitemapURL applies the link filters to a sitemap entry and drops the
// index page itself.
func keepSitemapURL(u string, filters []string) bool {
	if strings.Contains(u, "#") {
		return false
	}
	if len(filters) > 0 && !matchesAnyFilter(u, filters) {
		return false
	}
	return !isArchiveURL(u, filters)
}

// isArchiveURL reports whether the URL is one of the filter paths itself
// (a bare /listings/ archive, say) rather than a detail page beneath it.
func isArchiveURL(u string, filters []string) bool {
	trimmed := strings.TrimRight(u, "/")
	for _, f := range filters {
		if strings.HasSuffix(trimmed, strings.TrimRight(f, "/")) {
			return true
		}
	}
	return false
}

func matchesAnyFilter(u string, filters []string) bool {
	for _, f := range filters {
		if strings.Contains(u, f) {
			return true
		}
	}
	return false
}

func dedupOrdered(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
