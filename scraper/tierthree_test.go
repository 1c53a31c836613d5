package scraper

import "testing"

func TestTierThreeAdapterExtractDetail(t *testing.T) {
	doc := loadFixture(t, "tierthree_listing.html")
	a := NewTierThreeAdapter(brokerCfg("tierthree", "tierthree"))

	fs := a.ExtractDetail(doc, "https://tierthree.ca/listings/bc412/")

	if fs.Collections == nil || *fs.Collections != 1_900_000 {
		t.Fatalf("expected collections 1900000, got %v", fs.Collections)
	}
	if fs.EbitdaOrSde == nil || *fs.EbitdaOrSde != 540_000 {
		t.Fatalf("expected ebitda 540000, got %v", fs.EbitdaOrSde)
	}
	if fs.EquippedOps == nil || *fs.EquippedOps != 7 {
		t.Fatalf("expected 7 ops, got %v", fs.EquippedOps)
	}
	if fs.SqFt == nil || *fs.SqFt != 2800 {
		t.Fatalf("expected 2800 sqft, got %v", fs.SqFt)
	}
	if fs.AppraisedValue == nil || *fs.AppraisedValue != 1_485_000 {
		t.Fatalf("expected appraised value 1485000, got %v", fs.AppraisedValue)
	}
	// No published asking price: the appraisal stands in for it.
	if fs.AskingPrice == nil || *fs.AskingPrice != 1_485_000 {
		t.Fatalf("expected asking price to fall back to appraisal, got %v", fs.AskingPrice)
	}
	if fs.Province != "BC" {
		t.Fatalf("expected province BC from URL slug, got %q", fs.Province)
	}
}
