package workers

import (
	"context"
	"log"
	"net/http"
	"time"

	"practicescout/models"
	"practicescout/storage"
)

const sweepInterval = 6 * time.Hour

// HealthcheckWorker sweeps snapshot URLs with HEAD requests and records how
// many listings per broker have gone dead since the last crawl. Sold
// practices get delisted between runs; the dead count tells the operator a
// re-crawl is worth triggering early.
type HealthcheckWorker struct {
	dataset    storage.Dataset
	ops        *storage.SQLiteStore
	httpClient *http.Client
	triggerCh  chan struct{}
}

func NewHealthcheckWorker(dataset storage.Dataset, ops *storage.SQLiteStore, client *http.Client) *HealthcheckWorker {
	return &HealthcheckWorker{
		dataset:    dataset,
		ops:        ops,
		httpClient: client,
		triggerCh:  make(chan struct{}, 1),
	}
}

// Trigger causes the worker to run immediately.
func (w *HealthcheckWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *HealthcheckWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.triggerCh:
			w.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *HealthcheckWorker) sweep(ctx context.Context) {
	records, err := w.dataset.ReadSnapshot(ctx, 0)
	if err != nil {
		log.Printf("Healthcheck: read snapshot: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	dead := make(map[string]int)
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.Broker]; !ok {
			seen[r.Broker] = struct{}{}
			dead[r.Broker] = 0
		}
		if ctx.Err() != nil {
			return
		}
		if !w.alive(ctx, r.URL) {
			dead[r.Broker]++
		}
	}

	for brokerID, n := range dead {
		// Re-assert last run info so the dead count lands next to it.
		stats, err := w.brokerStats(brokerID)
		if err != nil {
			log.Printf("Healthcheck: stats for %s: %v", brokerID, err)
			continue
		}
		runAt := time.Now()
		status := models.RunStatusCompleted
		if stats != nil {
			if stats.LastRunAt != nil {
				runAt = *stats.LastRunAt
			}
			if stats.LastRunStatus != "" {
				status = models.RunStatus(stats.LastRunStatus)
			}
		}
		total := 0
		if stats != nil {
			total = stats.TotalRecords
		}
		if err := w.ops.UpdateBrokerStats(brokerID, runAt, status, total, n); err != nil {
			log.Printf("Healthcheck: update stats for %s: %v", brokerID, err)
		}
		if n > 0 {
			log.Printf("Healthcheck: %s has %d dead listings", brokerID, n)
		}
	}
}

func (w *HealthcheckWorker) alive(ctx context.Context, listingURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, listingURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		// Transient network failure is not evidence of delisting.
		return true
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return false
	default:
		return true
	}
}

func (w *HealthcheckWorker) brokerStats(brokerID string) (*models.BrokerStats, error) {
	all, err := w.ops.GetBrokerStats()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].BrokerID == brokerID {
			return &all[i], nil
		}
	}
	return nil, nil
}
