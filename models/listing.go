package models

import "time"

// FieldSet holds the economic fields recovered from one detail page.
// A nil pointer means the field was absent or rejected — never zero.
type FieldSet struct {
	AskingPrice    *float64 `json:"asking_price"`
	Collections    *float64 `json:"collections"`
	EbitdaOrSde    *float64 `json:"ebitda_or_sde"`
	EquippedOps    *float64 `json:"equipped_ops"`
	SqFt           *float64 `json:"sqft"`
	Province       string   `json:"province"`
	AppraisedValue *float64 `json:"appraised_value"`
}

// Plausibility bounds. Parsed values outside these are discarded, not clamped.
const (
	MinCollections = 100_000
	MinEbitda      = 50_000
	MinSqFt        = 350
	MaxSqFt        = 12_000
	MinOps         = 1
	MaxOps         = 25
	MinAskingPrice = 10_000
)

// HasEconomicSignal reports whether the page produced anything worth keeping:
// an asking price, gross collections, or earnings.
func (f *FieldSet) HasEconomicSignal() bool {
	return f.AskingPrice != nil || f.Collections != nil || f.EbitdaOrSde != nil
}

// Validate resets any field that falls outside its plausibility range.
func (f *FieldSet) Validate() {
	if f.Collections != nil && *f.Collections < MinCollections {
		f.Collections = nil
	}
	if f.EbitdaOrSde != nil && *f.EbitdaOrSde < MinEbitda {
		f.EbitdaOrSde = nil
	}
	if f.SqFt != nil && (*f.SqFt < MinSqFt || *f.SqFt > MaxSqFt) {
		f.SqFt = nil
	}
	if f.EquippedOps != nil && (*f.EquippedOps < MinOps || *f.EquippedOps > MaxOps) {
		f.EquippedOps = nil
	}
}

// ListingRecord is the persisted unit: one detail page from one crawl.
type ListingRecord struct {
	Broker         string    `json:"broker"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Province       string    `json:"province"`
	AskingPrice    *float64  `json:"asking_price"`
	Collections    *float64  `json:"collections"`
	EbitdaOrSde    *float64  `json:"ebitda_or_sde"`
	EquippedOps    *float64  `json:"equipped_ops"`
	SqFt           *float64  `json:"sqft"`
	ScrapedAt      time.Time `json:"scraped_at"`
	AppraisedValue *float64  `json:"appraised_value"`
}

// NewListingRecord builds a record from a validated field set.
func NewListingRecord(broker, title, url string, f *FieldSet, scrapedAt time.Time) ListingRecord {
	return ListingRecord{
		Broker:         broker,
		Title:          title,
		URL:            url,
		Province:       f.Province,
		AskingPrice:    f.AskingPrice,
		Collections:    f.Collections,
		EbitdaOrSde:    f.EbitdaOrSde,
		EquippedOps:    f.EquippedOps,
		SqFt:           f.SqFt,
		ScrapedAt:      scrapedAt,
		AppraisedValue: f.AppraisedValue,
	}
}

// CuratedRow is the curated-archive projection: numeric profile only,
// identity fields (broker, url, title) dropped.
type CuratedRow struct {
	Province       string   `json:"province"`
	Collections    *float64 `json:"collections"`
	EbitdaOrSde    *float64 `json:"ebitda_or_sde"`
	EquippedOps    *float64 `json:"equipped_ops"`
	SqFt           *float64 `json:"sqft"`
	AppraisedValue *float64 `json:"appraised_value"`
}

// Curate projects a listing record onto the archive schema.
func (r ListingRecord) Curate() CuratedRow {
	return CuratedRow{
		Province:       r.Province,
		Collections:    r.Collections,
		EbitdaOrSde:    r.EbitdaOrSde,
		EquippedOps:    r.EquippedOps,
		SqFt:           r.SqFt,
		AppraisedValue: r.AppraisedValue,
	}
}

// HasNumericValue reports whether any numeric column is populated. Rows that
// are province-only carry no benchmarking value and are not archived.
func (c CuratedRow) HasNumericValue() bool {
	return c.Collections != nil || c.EbitdaOrSde != nil || c.EquippedOps != nil ||
		c.SqFt != nil || c.AppraisedValue != nil
}
