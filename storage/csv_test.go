package storage

import (
	"context"
	"testing"
	"time"

	"practicescout/models"
)

func fptr(v float64) *float64 { return &v }

func sampleRecords() []models.ListingRecord {
	scrapedAt := time.Date(2026, 8, 30, 2, 15, 0, 0, time.UTC)
	return []models.ListingRecord{
		{
			Broker:      "roi",
			Title:       "Established General Practice",
			URL:         "https://roicorp.com/listings/practice-1/",
			Province:    "ON",
			AskingPrice: fptr(1_095_000),
			Collections: fptr(1_400_000),
			EbitdaOrSde: fptr(420_000),
			EquippedOps: fptr(5),
			SqFt:        fptr(1800),
			ScrapedAt:   scrapedAt,
		},
		{
			Broker:         "tierthree",
			Title:          "Modern Practice, Lower Mainland",
			URL:            "https://tierthree.ca/listings/bc412/",
			Province:       "BC",
			Collections:    fptr(1_900_000),
			EquippedOps:    fptr(7),
			ScrapedAt:      scrapedAt,
			AppraisedValue: fptr(1_485_000),
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()
	records := sampleRecords()

	if err := store.WriteSnapshot(ctx, records); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	got, err := store.ReadSnapshot(ctx, 0)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].URL != records[0].URL || got[1].URL != records[1].URL {
		t.Fatalf("URL order not preserved: %v", got)
	}
	if got[0].AskingPrice == nil || *got[0].AskingPrice != 1_095_000 {
		t.Fatalf("asking price lost in round trip: %v", got[0].AskingPrice)
	}
	// Absent fields must come back nil, not zero.
	if got[1].AskingPrice != nil {
		t.Fatalf("expected nil asking price, got %v", *got[1].AskingPrice)
	}
	if got[1].AppraisedValue == nil || *got[1].AppraisedValue != 1_485_000 {
		t.Fatalf("appraised value lost: %v", got[1].AppraisedValue)
	}
	if !got[0].ScrapedAt.Equal(records[0].ScrapedAt) {
		t.Fatalf("timestamp lost: %v", got[0].ScrapedAt)
	}
}

func TestSnapshotOverwrite(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	if err := store.WriteSnapshot(ctx, sampleRecords()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := store.WriteSnapshot(ctx, sampleRecords()[:1]); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := store.ReadSnapshot(ctx, 0)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("snapshot should be overwritten whole, got %d records", len(got))
	}
}

func TestReadSnapshotLimit(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	if err := store.WriteSnapshot(ctx, sampleRecords()); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	got, err := store.ReadSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(got))
	}
}

func TestReadSnapshotNewestFirst(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	// Written oldest first; reads must come back newest first regardless.
	records := sampleRecords()
	records[0].ScrapedAt = time.Date(2026, 8, 29, 2, 0, 0, 0, time.UTC)
	records[1].ScrapedAt = time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC)

	if err := store.WriteSnapshot(ctx, records); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	got, err := store.ReadSnapshot(ctx, 0)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(got) != 2 || got[0].URL != records[1].URL {
		t.Fatalf("expected newest record first, got %v", got)
	}

	top, err := store.ReadSnapshot(ctx, 1)
	if err != nil {
		t.Fatalf("read snapshot with limit: %v", err)
	}
	if len(top) != 1 || top[0].URL != records[1].URL {
		t.Fatalf("limit should keep the newest record, got %v", top)
	}
}

func TestMergeCuratedIdempotent(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	rows := []models.CuratedRow{
		{Province: "ON", Collections: fptr(1_400_000), EbitdaOrSde: fptr(420_000), EquippedOps: fptr(5), SqFt: fptr(1800)},
		{Province: "BC", Collections: fptr(1_900_000), EquippedOps: fptr(7), AppraisedValue: fptr(1_485_000)},
	}

	added, total, err := store.MergeCurated(ctx, rows)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if added != 2 || total != 2 {
		t.Fatalf("first merge: expected added=2 total=2, got %d/%d", added, total)
	}

	// Re-crawling the same listings must not grow the archive.
	added, total, err = store.MergeCurated(ctx, rows)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if added != 0 || total != 2 {
		t.Fatalf("second merge: expected added=0 total=2, got %d/%d", added, total)
	}

	// A genuinely new profile appends.
	added, total, err = store.MergeCurated(ctx, []models.CuratedRow{
		{Province: "AB", Collections: fptr(900_000), EquippedOps: fptr(4)},
	})
	if err != nil {
		t.Fatalf("third merge: %v", err)
	}
	if added != 1 || total != 3 {
		t.Fatalf("third merge: expected added=1 total=3, got %d/%d", added, total)
	}
}

func TestMergeCuratedDistinguishesAbsentFromZero(t *testing.T) {
	store, err := NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	a := models.CuratedRow{Province: "ON", Collections: fptr(1_400_000)}
	b := models.CuratedRow{Province: "ON", Collections: fptr(1_400_000), SqFt: fptr(0)}

	_, total, err := store.MergeCurated(ctx, []models.CuratedRow{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if total != 2 {
		t.Fatalf("absent and zero must hash differently, got total %d", total)
	}
}
