package storage

import (
	"path/filepath"
	"testing"
	"time"

	"practicescout/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "crawler.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	run := &models.CrawlRun{
		UID:       "test-uid",
		BrokerID:  "roi",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	id, err := store.CreateRun(run)
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	run.ID = id

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.URLsDiscovered = 12
	run.PagesFetched = 11
	run.RecordsExtracted = 8
	run.RecordsRejected = 3
	run.ErrorsCount = 1
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	runs, err := store.RecentRuns(10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.UID != "test-uid" || got.Status != models.RunStatusCompleted {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.RecordsExtracted != 8 || got.RecordsRejected != 3 || got.ErrorsCount != 1 {
		t.Fatalf("counters lost: %+v", got)
	}
}

func TestCommandQueue(t *testing.T) {
	store := openTestStore(t)

	if err := store.EnqueueCommand(models.CmdRunBroker, &models.CommandParams{Broker: "tierthree"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdRunBroker {
		t.Fatalf("unexpected command %s", cmds[0].Command)
	}
	params, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if params.Broker != "tierthree" {
		t.Fatalf("expected broker tierthree, got %q", params.Broker)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("pending after processing: %v", err)
	}
	if len(cmds) != 0 {
		t.Fatalf("expected empty queue, got %d", len(cmds))
	}
}

func TestBrokerStatsUpsert(t *testing.T) {
	store := openTestStore(t)
	runAt := time.Now()

	if err := store.UpdateBrokerStats("roi", runAt, models.RunStatusCompleted, 14, 0); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpdateBrokerStats("roi", runAt, models.RunStatusCompleted, 14, 2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	stats, err := store.GetBrokerStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one row per broker, got %d", len(stats))
	}
	if stats[0].TotalRecords != 14 || stats[0].DeadURLs != 2 {
		t.Fatalf("unexpected stats: %+v", stats[0])
	}
}
