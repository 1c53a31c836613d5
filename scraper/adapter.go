package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
	"practicescout/models"
)

// Adapter extracts a normalized field set from one broker's detail page.
// Adding a broker means adding an adapter plus alias data; the strategy chain
// itself is shared and never modified per site.
type Adapter interface {
	ID() string
	ExtractDetail(doc *goquery.Document, pageURL string) *models.FieldSet
}

// NewAdapter dispatches on the broker config's handler key.
func NewAdapter(cfg *config.BrokerConfig) Adapter {
	switch cfg.Handler {
	case "roi":
		return NewROIAdapter(cfg)
	case "tierthree":
		return NewTierThreeAdapter(cfg)
	default:
		return NewGenericAdapter(cfg)
	}
}
