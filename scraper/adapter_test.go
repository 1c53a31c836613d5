package scraper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
)

func brokerCfg(id, handler string) *config.BrokerConfig {
	return &config.BrokerConfig{
		ID:       id,
		Name:     id,
		Handler:  handler,
		MaxLinks: 40,
	}
}

func loadFixture(t *testing.T, name string) *goquery.Document {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to parse fixture %s: %v", name, err)
	}
	return doc
}

func TestNewAdapterDispatch(t *testing.T) {
	if _, ok := NewAdapter(brokerCfg("roi", "roi")).(*ROIAdapter); !ok {
		t.Fatal("handler roi should build an ROIAdapter")
	}
	if _, ok := NewAdapter(brokerCfg("tierthree", "tierthree")).(*TierThreeAdapter); !ok {
		t.Fatal("handler tierthree should build a TierThreeAdapter")
	}
	if _, ok := NewAdapter(brokerCfg("mbc", "")).(*GenericAdapter); !ok {
		t.Fatal("unknown handler should fall back to the generic adapter")
	}
}
