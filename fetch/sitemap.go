package fetch

import (
	"context"
	"strings"

	"github.com/beevik/etree"
)

// maxSitemapDepth bounds sitemapindex recursion; real-world indexes nest once.
const maxSitemapDepth = 3

// SitemapURLs fetches one or more sitemap endpoints and returns every <loc>
// entry. A failing endpoint is skipped; the remaining ones still contribute.
func (c *Client) SitemapURLs(ctx context.Context, sitemapURLs []string) []string {
	seen := make(map[string]bool)
	var out []string

	for _, sm := range sitemapURLs {
		urls, err := c.readSitemap(ctx, sm, seen, 0)
		if err != nil {
			continue
		}
		out = append(out, urls...)
	}
	return out
}

func (c *Client) readSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if depth > maxSitemapDepth || seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := c.Static(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	// A sitemapindex points at child sitemaps; a urlset lists pages directly.
	if root.Tag == "sitemapindex" {
		var out []string
		for _, sm := range root.SelectElements("sitemap") {
			loc := sm.SelectElement("loc")
			if loc == nil {
				continue
			}
			child := strings.TrimSpace(loc.Text())
			if child == "" {
				continue
			}
			urls, err := c.readSitemap(ctx, child, seen, depth+1)
			if err != nil {
				continue
			}
			out = append(out, urls...)
		}
		return out, nil
	}

	var out []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out, nil
}
