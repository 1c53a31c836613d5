package scraper

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
	"practicescout/models"
)

var appraisedRe = regexp.MustCompile(`(?i)appraised value\s*[:\-]?\s*\$?\s*([\d,.]+)`)

// ROIAdapter extracts ROI Corp fact sheets. ROI publishes conventional
// definition lists and tables, with the occasional label/value pair rendered
// as adjacent strong/span nodes.
type ROIAdapter struct {
	cfg     *config.BrokerConfig
	aliases Aliases
	chain   []strategy
}

func NewROIAdapter(cfg *config.BrokerConfig) *ROIAdapter {
	return &ROIAdapter{
		cfg:     cfg,
		aliases: genericAliases(),
		chain: []strategy{
			definitionListStrategy,
			tableStrategy,
			labeledElementStrategy,
			proximityStrategy,
		},
	}
}

func (a *ROIAdapter) ID() string {
	return a.cfg.ID
}

func (a *ROIAdapter) ExtractDetail(doc *goquery.Document, pageURL string) *models.FieldSet {
	fs := runStrategies(doc, a.aliases, a.chain)

	flat := flattenText(doc)
	fs.Province = inferProvince(flat, pageURL)

	// ROI publishes an explicit appraised value on some sheets; capture it
	// separately for downstream QC.
	if m := appraisedRe.FindStringSubmatch(flat); m != nil {
		fs.AppraisedValue = parseNumber(m[1])
	}

	fs.Validate()
	return fs
}
