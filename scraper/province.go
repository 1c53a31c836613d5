package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

var provinceCodes = []string{"ON", "BC", "AB", "SK", "MB", "NB", "NS", "NL", "PE", "YT", "NT", "NU"}

var urlSlugProvinceRe = regexp.MustCompile(`(?i)^([a-z]{2})\d+`)

// provinceFromText scans flattened page text for a two-letter jurisdiction code
// bounded by whitespace.
func provinceFromText(txt string) string {
	up := " " + strings.ToUpper(txt) + " "
	for _, code := range provinceCodes {
		if strings.Contains(up, " "+code+" ") {
			return code
		}
	}
	return ""
}

// provinceFromURL extracts a province code from a slug convention like
// /listings/on1234/. Returns "" when the slug does not encode one.
func provinceFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimSuffix(u.Path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	slug := path[idx+1:]
	m := urlSlugProvinceRe.FindStringSubmatch(slug)
	if m == nil {
		return ""
	}
	code := strings.ToUpper(m[1])
	for _, known := range provinceCodes {
		if code == known {
			return code
		}
	}
	return ""
}

// inferProvince combines both sources; the URL convention wins when present.
func inferProvince(pageText, rawURL string) string {
	if p := provinceFromURL(rawURL); p != "" {
		return p
	}
	return provinceFromText(pageText)
}
