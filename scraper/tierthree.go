package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
	"practicescout/models"
)

// TierThreeAdapter extracts Tier Three listings. The site renders fact sheets
// as Elementor icon lists rather than tables, encodes the province in the
// listing URL slug, and frequently publishes an appraised value instead of an
// asking price.
type TierThreeAdapter struct {
	cfg     *config.BrokerConfig
	aliases Aliases
	chain   []strategy
}

func NewTierThreeAdapter(cfg *config.BrokerConfig) *TierThreeAdapter {
	return &TierThreeAdapter{
		cfg: cfg,
		aliases: Aliases{
			FieldAskingPrice: {"asking price", "list price", "offering price", "purchase price", "listing price", "price"},
			FieldCollections: {"gross revenue", "practice gross revenue", "revenue", "collections", "annual production", "turnover", "gross billings", "billings"},
			FieldEbitda:      {"normalized ebitda", "ebitda", "sde", "cash earnings", "adjusted cash earnings", "cash flow", "net income", "seller's discretionary earnings"},
			FieldOps:         {"operatories", "operatory", "ops", "chairs", "treatment rooms"},
			FieldSqFt:        {"premises size", "square feet", "sq ft", "sqft", "area", "size"},
		},
		chain: []strategy{
			definitionListStrategy,
			tableStrategy,
			iconListStrategy,
			proximityStrategy,
		},
	}
}

func (a *TierThreeAdapter) ID() string {
	return a.cfg.ID
}

func (a *TierThreeAdapter) ExtractDetail(doc *goquery.Document, pageURL string) *models.FieldSet {
	fs := runStrategies(doc, a.aliases, a.chain)

	flat := flattenText(doc)
	fs.Province = inferProvince(flat, pageURL)
	fs.AppraisedValue = a.findAppraisedValue(doc)

	// No published asking price conflates with the appraisal; fall back so the
	// record still carries a price signal.
	if fs.AskingPrice == nil && fs.AppraisedValue != nil {
		fs.AskingPrice = fs.AppraisedValue
	}

	fs.Validate()
	return fs
}

// findAppraisedValue scans list items and short text blocks for an
// "Appraised Value" label and parses a money amount from the same node or its
// immediate siblings. Amounts under $100k are noise (footnotes, percentages).
func (a *TierThreeAdapter) findAppraisedValue(doc *goquery.Document) *float64 {
	var found *float64
	doc.Find(".elementor-icon-list-item, li, p, span, strong, b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := cleanText(sel.Text())
		if text == "" || !appraisedLabelRe.MatchString(text) {
			return true
		}
		if v := parseMoney(text); v != nil && *v >= 100_000 {
			found = v
			return false
		}
		if v := parseMoney(neighborBundle(sel)); v != nil && *v >= 100_000 {
			found = v
			return false
		}
		return true
	})
	return found
}
