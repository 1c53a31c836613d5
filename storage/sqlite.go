package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"practicescout/models"
)

// SQLiteStore holds operational state: run history, crawl logs, the command
// queue the scheduler polls, and per-broker stats. Dataset output lives
// elsewhere (CSV or Postgres); this database is bookkeeping only.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY,
		uid TEXT NOT NULL,
		broker_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		urls_discovered INTEGER DEFAULT 0,
		pages_fetched INTEGER DEFAULT 0,
		records_extracted INTEGER DEFAULT 0,
		records_rejected INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS crawl_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		broker_id TEXT
	);

	CREATE TABLE IF NOT EXISTS broker_stats (
		broker_id TEXT PRIMARY KEY,
		last_run_at DATETIME,
		last_run_status TEXT,
		total_records INTEGER DEFAULT 0,
		dead_urls INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON crawl_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_broker ON crawl_runs(broker_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON crawl_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.CrawlRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO crawl_runs (uid, broker_id, started_at, status,
			urls_discovered, pages_fetched, records_extracted, records_rejected, errors_count)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0)`,
		run.UID, run.BrokerID, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.CrawlRun) error {
	_, err := s.db.Exec(`
		UPDATE crawl_runs SET finished_at = ?, status = ?, urls_discovered = ?,
			pages_fetched = ?, records_extracted = ?, records_rejected = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.URLsDiscovered,
		run.PagesFetched, run.RecordsExtracted, run.RecordsRejected, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) RecentRuns(limit int) ([]models.CrawlRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, uid, broker_id, started_at, finished_at, status,
			urls_discovered, pages_fetched, records_extracted, records_rejected, errors_count
		FROM crawl_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.CrawlRun
	for rows.Next() {
		var r models.CrawlRun
		var brokerID sql.NullString
		if err := rows.Scan(&r.ID, &r.UID, &brokerID, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.URLsDiscovered, &r.PagesFetched, &r.RecordsExtracted, &r.RecordsRejected, &r.ErrorsCount); err != nil {
			return nil, err
		}
		r.BrokerID = brokerID.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, brokerID string) error {
	_, err := s.db.Exec(`
		INSERT INTO crawl_logs (run_id, timestamp, level, message, broker_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, brokerID)
	return err
}

func (s *SQLiteStore) UpdateBrokerStats(brokerID string, runAt time.Time, status models.RunStatus, records, deadURLs int) error {
	_, err := s.db.Exec(`
		INSERT INTO broker_stats (broker_id, last_run_at, last_run_status, total_records, dead_urls)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(broker_id) DO UPDATE SET
			last_run_at = excluded.last_run_at,
			last_run_status = excluded.last_run_status,
			total_records = excluded.total_records,
			dead_urls = excluded.dead_urls`,
		brokerID, runAt, status, records, deadURLs)
	return err
}

func (s *SQLiteStore) GetBrokerStats() ([]models.BrokerStats, error) {
	rows, err := s.db.Query(`
		SELECT broker_id, last_run_at, last_run_status, total_records, dead_urls
		FROM broker_stats ORDER BY broker_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.BrokerStats
	for rows.Next() {
		var st models.BrokerStats
		var status sql.NullString
		if err := rows.Scan(&st.BrokerID, &st.LastRunAt, &status, &st.TotalRecords, &st.DeadURLs); err != nil {
			return nil, err
		}
		st.LastRunStatus = status.String
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) error {
	var raw []byte
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`INSERT INTO commands (command, params) VALUES (?, ?)`, cmd, raw)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}
