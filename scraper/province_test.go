package scraper

import "testing"

func TestProvinceFromURLSlug(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://tierthree.ca/listings/on123/", "ON"},
		{"https://tierthree.ca/listings/bc412", "BC"},
		{"https://example.com/listings/practice-for-sale/", ""},
		{"https://example.com/listings/xx999/", ""},
		{"not a url at all", ""},
	}
	for _, c := range cases {
		if got := provinceFromURL(c.url); got != c.want {
			t.Fatalf("provinceFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestProvinceFromText(t *testing.T) {
	if got := provinceFromText("Established practice in Mississauga ON with loyal patient base"); got != "ON" {
		t.Fatalf("expected ON, got %q", got)
	}
	if got := provinceFromText("no jurisdiction mentioned here"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	// Codes embedded inside words must not match.
	if got := provinceFromText("PONTIAC DENTAL GROUP"); got != "" {
		t.Fatalf("expected empty for embedded code, got %q", got)
	}
}

func TestInferProvinceURLWins(t *testing.T) {
	got := inferProvince("Beautiful clinic in Vancouver BC", "https://tierthree.ca/listings/ab55/")
	if got != "AB" {
		t.Fatalf("URL slug should win over text scan, got %q", got)
	}
	got = inferProvince("Beautiful clinic in Vancouver BC", "https://tierthree.ca/listings/clinic-55/")
	if got != "BC" {
		t.Fatalf("expected BC from text fallback, got %q", got)
	}
}
