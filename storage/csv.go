package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"practicescout/identity"
	"practicescout/models"
)

const (
	snapshotFile = "scraped_listings.csv"
	curatedFile  = "appraisal_dataset.csv"
)

var snapshotHeader = []string{
	"broker", "title", "url", "province",
	"asking_price", "collections", "ebitda_or_sde", "equipped_ops", "sqft",
	"scraped_at", "appraised_value",
}

var curatedHeader = []string{
	"province", "collections", "ebitda_or_sde", "equipped_ops", "sqft", "appraised_value",
}

// CSVStore is the default Dataset backend: two flat files under the data
// directory. The snapshot file is rewritten whole each run; the curated file
// is merged in place, so the archive survives runs that find nothing.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) WriteSnapshot(_ context.Context, records []models.ListingRecord) error {
	path := filepath.Join(s.dir, snapshotFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Broker,
			r.Title,
			r.URL,
			r.Province,
			formatFloat(r.AskingPrice),
			formatFloat(r.Collections),
			formatFloat(r.EbitdaOrSde),
			formatFloat(r.EquippedOps),
			formatFloat(r.SqFt),
			r.ScrapedAt.UTC().Format(time.RFC3339),
			formatFloat(r.AppraisedValue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVStore) ReadSnapshot(_ context.Context, limit int) ([]models.ListingRecord, error) {
	path := filepath.Join(s.dir, snapshotFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(snapshotHeader)

	// Header row.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []models.ListingRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		rec := models.ListingRecord{
			Broker:         row[0],
			Title:          row[1],
			URL:            row[2],
			Province:       row[3],
			AskingPrice:    parseFloatPtr(row[4]),
			Collections:    parseFloatPtr(row[5]),
			EbitdaOrSde:    parseFloatPtr(row[6]),
			EquippedOps:    parseFloatPtr(row[7]),
			SqFt:           parseFloatPtr(row[8]),
			AppraisedValue: parseFloatPtr(row[10]),
		}
		if ts, err := time.Parse(time.RFC3339, row[9]); err == nil {
			rec.ScrapedAt = ts
		}
		out = append(out, rec)
	}

	// Newest first, matching the Postgres backend.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScrapedAt.Equal(out[j].ScrapedAt) {
			return out[i].ScrapedAt.After(out[j].ScrapedAt)
		}
		return out[i].URL < out[j].URL
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MergeCurated folds this run's rows into the archive. Collisions on the
// profile key keep the incoming row; archive order is preserved, new profiles
// append at the end.
func (s *CSVStore) MergeCurated(_ context.Context, rows []models.CuratedRow) (added, total int, err error) {
	existing, err := s.readCurated()
	if err != nil {
		return 0, 0, err
	}
	before := len(existing)

	index := make(map[string]int, len(existing))
	merged := make([]models.CuratedRow, len(existing))
	copy(merged, existing)
	for i, row := range merged {
		index[identity.ProfileKey(row)] = i
	}

	for _, row := range rows {
		key := identity.ProfileKey(row)
		if i, ok := index[key]; ok {
			merged[i] = row
			continue
		}
		index[key] = len(merged)
		merged = append(merged, row)
	}

	if err := s.writeCurated(merged); err != nil {
		return 0, 0, err
	}

	added = len(merged) - before
	if added < 0 {
		added = 0
	}
	return added, len(merged), nil
}

func (s *CSVStore) readCurated() ([]models.CuratedRow, error) {
	path := filepath.Join(s.dir, curatedFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open curated archive: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(curatedHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []models.CuratedRow
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read curated archive: %w", err)
		}
		out = append(out, models.CuratedRow{
			Province:       row[0],
			Collections:    parseFloatPtr(row[1]),
			EbitdaOrSde:    parseFloatPtr(row[2]),
			EquippedOps:    parseFloatPtr(row[3]),
			SqFt:           parseFloatPtr(row[4]),
			AppraisedValue: parseFloatPtr(row[5]),
		})
	}
	return out, nil
}

func (s *CSVStore) writeCurated(rows []models.CuratedRow) error {
	path := filepath.Join(s.dir, curatedFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("open curated archive: %w", err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(curatedHeader)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{
			row.Province,
			formatFloat(row.Collections),
			formatFloat(row.EbitdaOrSde),
			formatFloat(row.EquippedOps),
			formatFloat(row.SqFt),
			formatFloat(row.AppraisedValue),
		})
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if err := f.Close(); writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}
	return os.Rename(tmp, path)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
