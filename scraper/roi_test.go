package scraper

import "testing"

func TestROIAdapterExtractDetail(t *testing.T) {
	doc := loadFixture(t, "roi_listing.html")
	a := NewROIAdapter(brokerCfg("roi", "roi"))

	fs := a.ExtractDetail(doc, "https://roicorp.com/listings/established-general-practice/")

	if fs.AskingPrice == nil || *fs.AskingPrice != 1_095_000 {
		t.Fatalf("expected asking price 1095000, got %v", fs.AskingPrice)
	}
	if fs.Collections == nil || *fs.Collections != 1_400_000 {
		t.Fatalf("expected collections 1400000, got %v", fs.Collections)
	}
	if fs.EbitdaOrSde == nil || *fs.EbitdaOrSde != 420_000 {
		t.Fatalf("expected ebitda 420000, got %v", fs.EbitdaOrSde)
	}
	if fs.EquippedOps == nil || *fs.EquippedOps != 5 {
		t.Fatalf("expected 5 ops, got %v", fs.EquippedOps)
	}
	if fs.SqFt == nil || *fs.SqFt != 1800 {
		t.Fatalf("expected 1800 sqft, got %v", fs.SqFt)
	}
	if fs.Province != "ON" {
		t.Fatalf("expected province ON from page text, got %q", fs.Province)
	}
	if fs.AppraisedValue == nil || *fs.AppraisedValue != 1_100_000 {
		t.Fatalf("expected appraised value 1100000, got %v", fs.AppraisedValue)
	}
	if !fs.HasEconomicSignal() {
		t.Fatal("fixture should carry economic signal")
	}
}
