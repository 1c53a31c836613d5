package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type CrawlRun struct {
	ID               int64      `json:"id" db:"id"`
	UID              string     `json:"uid" db:"uid"`
	BrokerID         string     `json:"broker_id" db:"broker_id"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	FinishedAt       *time.Time `json:"finished_at" db:"finished_at"`
	Status           RunStatus  `json:"status" db:"status"`
	URLsDiscovered   int        `json:"urls_discovered" db:"urls_discovered"`
	PagesFetched     int        `json:"pages_fetched" db:"pages_fetched"`
	RecordsExtracted int        `json:"records_extracted" db:"records_extracted"`
	RecordsRejected  int        `json:"records_rejected" db:"records_rejected"`
	ErrorsCount      int        `json:"errors_count" db:"errors_count"`
}

type BrokerStats struct {
	BrokerID      string     `json:"broker_id" db:"broker_id"`
	LastRunAt     *time.Time `json:"last_run_at" db:"last_run_at"`
	LastRunStatus string     `json:"last_run_status" db:"last_run_status"`
	TotalRecords  int        `json:"total_records" db:"total_records"`
	DeadURLs      int        `json:"dead_urls" db:"dead_urls"`
}
