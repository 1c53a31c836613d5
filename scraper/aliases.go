package scraper

import "strings"

// Canonical field names used across the strategy chain.
const (
	FieldAskingPrice = "asking_price"
	FieldCollections = "collections"
	FieldEbitda      = "ebitda_or_sde"
	FieldOps         = "equipped_ops"
	FieldSqFt        = "sqft"
)

// monetary fields require a visible currency marker before a fragment is parsed
var monetaryFields = map[string]bool{
	FieldAskingPrice: true,
	FieldCollections: true,
	FieldEbitda:      true,
}

// Aliases maps a canonical field to the label phrases a broker uses for it.
// Each adapter supplies its own table; matching is loose on purpose (substring,
// case-folded) and the plausibility ranges compensate for the lost precision.
type Aliases map[string][]string

// matchLabel reports whether any alias phrase occurs anywhere within the label.
func matchLabel(label string, aliases []string) bool {
	t := strings.ToLower(strings.TrimSpace(label))
	if t == "" {
		return false
	}
	for _, a := range aliases {
		if strings.Contains(t, a) {
			return true
		}
	}
	return false
}

// genericAliases is the baseline vocabulary shared by brokers that publish
// conventional fact sheets. Site adapters extend or replace entries as needed.
func genericAliases() Aliases {
	return Aliases{
		FieldAskingPrice: {"asking price", "list price", "price"},
		FieldCollections: {"gross revenue", "revenue", "collections", "annual production", "turnover", "gross"},
		FieldEbitda:      {"cash earnings", "ebitda", "sde", "net income", "cash flow"},
		FieldOps:         {"operatories", "operatory", "ops", "chairs", "treatment rooms"},
		FieldSqFt:        {"square feet", "sq ft", "sqft", "area", "size"},
	}
}
