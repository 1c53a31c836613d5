package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func sitemapServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>%s/sitemap-listings.xml</loc></sitemap>
  <sitemap><loc>%s/sitemap-missing.xml</loc></sitemap>
</sitemapindex>`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/sitemap-listings.xml", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://roicorp.com/listings/practice-1/</loc></url>
  <url><loc>https://roicorp.com/listings/practice-2/</loc></url>
  <url><loc> </loc></url>
</urlset>`)
	})
	mux.HandleFunc("/sitemap-missing.xml", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSitemapIndexRecursion(t *testing.T) {
	srv := sitemapServer(t)
	c := NewClient(srv.Client(), 1, 1000)
	defer c.Close()

	urls := c.SitemapURLs(context.Background(), []string{srv.URL + "/sitemap.xml"})

	want := []string{
		"https://roicorp.com/listings/practice-1/",
		"https://roicorp.com/listings/practice-2/",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d: %v", len(want), len(urls), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("url %d: expected %s, got %s", i, want[i], urls[i])
		}
	}
}

func TestSitemapFailingEndpointSkipped(t *testing.T) {
	srv := sitemapServer(t)
	c := NewClient(srv.Client(), 1, 1000)
	defer c.Close()

	urls := c.SitemapURLs(context.Background(), []string{
		srv.URL + "/sitemap-missing.xml",
		srv.URL + "/sitemap-listings.xml",
	})
	if len(urls) != 2 {
		t.Fatalf("healthy endpoint should still contribute, got %v", urls)
	}
}

func TestStaticNonOKStatusIsError(t *testing.T) {
	srv := sitemapServer(t)
	c := NewClient(srv.Client(), 1, 1000)
	defer c.Close()

	_, err := c.Static(context.Background(), srv.URL+"/sitemap-missing.xml")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", fe.Status)
	}
}
