package storage

import (
	"context"

	"practicescout/models"
)

// Dataset is the durable two-tier store the orchestrator persists into once
// per run: the snapshot tier (all records from the latest run, overwritten
// each time) and the curated archive (accumulating numeric profiles,
// deduplicated by profile key, keeping the most recent on collision).
type Dataset interface {
	// WriteSnapshot replaces the snapshot tier with this run's records.
	WriteSnapshot(ctx context.Context, records []models.ListingRecord) error

	// MergeCurated folds rows into the curated archive and reports how many
	// rows were newly added and the archive total after the merge.
	MergeCurated(ctx context.Context, rows []models.CuratedRow) (added, total int, err error)

	// ReadSnapshot returns up to limit records from the most recent run
	// (all of them when limit <= 0).
	ReadSnapshot(ctx context.Context, limit int) ([]models.ListingRecord, error)
}
