package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"practicescout/identity"
	"practicescout/models"
)

// PostgresStore is the Dataset backend used when DATABASE_URL is set. Same
// two-tier shape as the CSV store: listings_snapshot is replaced per run,
// curated_profiles accumulates with an upsert on the profile key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS listings_snapshot (
			url             TEXT PRIMARY KEY,
			broker          TEXT NOT NULL,
			title           TEXT NOT NULL DEFAULT '',
			province        TEXT NOT NULL DEFAULT '',
			asking_price    DOUBLE PRECISION,
			collections     DOUBLE PRECISION,
			ebitda_or_sde   DOUBLE PRECISION,
			equipped_ops    DOUBLE PRECISION,
			sqft            DOUBLE PRECISION,
			scraped_at      TIMESTAMPTZ NOT NULL,
			appraised_value DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS curated_profiles (
			profile_key     TEXT PRIMARY KEY,
			province        TEXT NOT NULL DEFAULT '',
			collections     DOUBLE PRECISION,
			ebitda_or_sde   DOUBLE PRECISION,
			equipped_ops    DOUBLE PRECISION,
			sqft            DOUBLE PRECISION,
			appraised_value DOUBLE PRECISION,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_broker ON listings_snapshot(broker)`,
		`CREATE INDEX IF NOT EXISTS idx_curated_province ON curated_profiles(province)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) WriteSnapshot(ctx context.Context, records []models.ListingRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE listings_snapshot`); err != nil {
		return fmt.Errorf("truncate snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`INSERT INTO listings_snapshot
			(url, broker, title, province, asking_price, collections, ebitda_or_sde,
			 equipped_ops, sqft, scraped_at, appraised_value)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (url) DO UPDATE SET
				broker = EXCLUDED.broker,
				title = EXCLUDED.title,
				province = EXCLUDED.province,
				asking_price = EXCLUDED.asking_price,
				collections = EXCLUDED.collections,
				ebitda_or_sde = EXCLUDED.ebitda_or_sde,
				equipped_ops = EXCLUDED.equipped_ops,
				sqft = EXCLUDED.sqft,
				scraped_at = EXCLUDED.scraped_at,
				appraised_value = EXCLUDED.appraised_value`,
			r.URL, r.Broker, r.Title, r.Province,
			r.AskingPrice, r.Collections, r.EbitdaOrSde, r.EquippedOps, r.SqFt,
			r.ScrapedAt, r.AppraisedValue)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ReadSnapshot(ctx context.Context, limit int) ([]models.ListingRecord, error) {
	q := `SELECT url, broker, title, province, asking_price, collections,
			ebitda_or_sde, equipped_ops, sqft, scraped_at, appraised_value
		FROM listings_snapshot ORDER BY scraped_at DESC, url`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []models.ListingRecord
	for rows.Next() {
		var r models.ListingRecord
		if err := rows.Scan(&r.URL, &r.Broker, &r.Title, &r.Province,
			&r.AskingPrice, &r.Collections, &r.EbitdaOrSde, &r.EquippedOps, &r.SqFt,
			&r.ScrapedAt, &r.AppraisedValue); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MergeCurated(ctx context.Context, rows []models.CuratedRow) (added, total int, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin curated tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var before int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM curated_profiles`).Scan(&before); err != nil {
		return 0, 0, fmt.Errorf("count curated: %w", err)
	}

	// Postgres rejects an upsert batch that touches the same key twice, so
	// collapse within-run duplicates first, last occurrence winning.
	keyed := make(map[string]int, len(rows))
	deduped := make([]models.CuratedRow, 0, len(rows))
	for _, row := range rows {
		key := identity.ProfileKey(row)
		if i, ok := keyed[key]; ok {
			deduped[i] = row
			continue
		}
		keyed[key] = len(deduped)
		deduped = append(deduped, row)
	}

	batch := &pgx.Batch{}
	for _, row := range deduped {
		batch.Queue(`INSERT INTO curated_profiles
			(profile_key, province, collections, ebitda_or_sde, equipped_ops, sqft, appraised_value, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,now())
			ON CONFLICT (profile_key) DO UPDATE SET
				province = EXCLUDED.province,
				collections = EXCLUDED.collections,
				ebitda_or_sde = EXCLUDED.ebitda_or_sde,
				equipped_ops = EXCLUDED.equipped_ops,
				sqft = EXCLUDED.sqft,
				appraised_value = EXCLUDED.appraised_value,
				updated_at = now()`,
			identity.ProfileKey(row), row.Province,
			row.Collections, row.EbitdaOrSde, row.EquippedOps, row.SqFt, row.AppraisedValue)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, 0, fmt.Errorf("upsert curated: %w", err)
	}

	if err := tx.QueryRow(ctx, `SELECT count(*) FROM curated_profiles`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count curated: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}

	added = total - before
	if added < 0 {
		added = 0
	}
	return added, total, nil
}
