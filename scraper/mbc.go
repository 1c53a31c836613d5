package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"practicescout/config"
	"practicescout/models"
)

// GenericAdapter runs the full strategy chain with the baseline alias
// vocabulary. Brokers without site-specific markup conventions (MBC) use it
// as-is; it is also the default for newly added broker configs.
type GenericAdapter struct {
	cfg     *config.BrokerConfig
	aliases Aliases
	chain   []strategy
}

func NewGenericAdapter(cfg *config.BrokerConfig) *GenericAdapter {
	return &GenericAdapter{
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

func (a *GenericAdapter) ID() string {
	return a.cfg.ID
}

func (a *GenericAdapter) ExtractDetail(doc *goquery.Document, pageURL string) *models.FieldSet {
	fs := runStrategies(doc, a.aliases, a.chain)
	fs.Province = inferProvince(flattenText(doc), pageURL)
	fs.Validate()
	return fs
}
