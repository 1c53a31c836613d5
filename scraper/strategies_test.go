package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse html: %v", err)
	}
	return doc
}

func TestDefinitionListExtraction(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<h1>Family Practice — Toronto</h1>
		<p>Thriving practice in Toronto ON with a long-tenured team.</p>
		<dl>
			<dt>Gross Revenue</dt><dd>$1,250,000</dd>
			<dt>Operatories</dt><dd>6</dd>
			<dt>Square Feet</dt><dd>2,400</dd>
		</dl>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/on1234/")

	if fs.Collections == nil || *fs.Collections != 1_250_000 {
		t.Fatalf("expected collections 1250000, got %v", fs.Collections)
	}
	if fs.EquippedOps == nil || *fs.EquippedOps != 6 {
		t.Fatalf("expected 6 ops, got %v", fs.EquippedOps)
	}
	if fs.SqFt == nil || *fs.SqFt != 2400 {
		t.Fatalf("expected 2400 sqft, got %v", fs.SqFt)
	}
	if fs.Province != "ON" {
		t.Fatalf("expected province ON, got %q", fs.Province)
	}
}

func TestStructuredValueBeatsProximityText(t *testing.T) {
	// The definition list and the prose disagree; the structured value wins.
	doc := docFromString(t, `<html><body>
		<dl><dt>Gross Revenue</dt><dd>$1,250,000</dd></dl>
		<p>Last year gross revenue reached $900,000 before the expansion.</p>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/x/")

	if fs.Collections == nil || *fs.Collections != 1_250_000 {
		t.Fatalf("expected structured value 1250000, got %v", fs.Collections)
	}
}

func TestMonetaryFieldNeedsCurrencyMarker(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<dl><dt>Asking Price</dt><dd>4500</dd></dl>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/x/")

	if fs.AskingPrice != nil {
		t.Fatalf("bare number should not pass the money guard, got %v", *fs.AskingPrice)
	}
}

func TestImplausibleValuesDiscarded(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<dl>
			<dt>Operatories</dt><dd>40</dd>
			<dt>Square Feet</dt><dd>200</dd>
			<dt>Gross Revenue</dt><dd>$45,000</dd>
		</dl>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/x/")

	if fs.EquippedOps != nil {
		t.Fatalf("40 ops is out of range, got %v", *fs.EquippedOps)
	}
	if fs.SqFt != nil {
		t.Fatalf("200 sqft is out of range, got %v", *fs.SqFt)
	}
	if fs.Collections != nil {
		t.Fatalf("45k collections is out of range, got %v", *fs.Collections)
	}
}

func TestProximityFallback(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<p>Well established clinic. Asking price of $849,000 firm. The suite
		offers 4 operatories across 1,600 sq ft of leased space.</p>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/x/")

	if fs.AskingPrice == nil || *fs.AskingPrice != 849_000 {
		t.Fatalf("expected asking price 849000 from prose, got %v", fs.AskingPrice)
	}
	if fs.EquippedOps == nil || *fs.EquippedOps != 4 {
		t.Fatalf("expected 4 ops from prose, got %v", fs.EquippedOps)
	}
	if fs.SqFt == nil || *fs.SqFt != 1600 {
		t.Fatalf("expected 1600 sqft from prose, got %v", fs.SqFt)
	}
}

func TestHasEconomicSignalGate(t *testing.T) {
	doc := docFromString(t, `<html><body>
		<p>Contact us for details about this opportunity in Calgary AB.</p>
	</body></html>`)

	a := NewGenericAdapter(brokerCfg("mbc", ""))
	fs := a.ExtractDetail(doc, "https://example.com/listings/x/")

	if fs.HasEconomicSignal() {
		t.Fatal("province-only page should carry no economic signal")
	}
}
