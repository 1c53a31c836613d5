package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"practicescout/config"
	"practicescout/models"
	"practicescout/observability"
	"practicescout/storage"
)

// Orchestrator drives the full pipeline for each configured broker:
// discover detail URLs, fetch pages through a bounded worker pool, extract
// and validate fields, then persist the snapshot and curated tiers.
type Orchestrator struct {
	cfg      *config.Config
	ops      *storage.SQLiteStore
	dataset  storage.Dataset
	fetcher  Fetcher
	adapters map[string]Adapter

	mu     sync.Mutex
	paused bool
}

func NewOrchestrator(cfg *config.Config, ops *storage.SQLiteStore, dataset storage.Dataset, fetcher Fetcher) *Orchestrator {
	adapters := make(map[string]Adapter, len(cfg.Brokers))
	for id, brokerCfg := range cfg.Brokers {
		adapters[id] = NewAdapter(brokerCfg)
	}
	return &Orchestrator{
		cfg:      cfg,
		ops:      ops,
		dataset:  dataset,
		fetcher:  fetcher,
		adapters: adapters,
	}
}

func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
}

func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// RunAll crawls every configured broker and replaces the snapshot tier with
// the combined results. A broker that fails is logged and skipped; its old
// records simply drop out of the snapshot. Returns how many curated profiles
// the run added and the archive total afterwards.
func (o *Orchestrator) RunAll(ctx context.Context) (added, total int, err error) {
	if o.IsPaused() {
		log.Println("Crawler is paused, skipping run")
		return 0, 0, nil
	}

	var all []models.ListingRecord
	for id := range o.cfg.Brokers {
		records, err := o.crawlBroker(ctx, id)
		if err != nil {
			log.Printf("Broker %s run failed: %v", id, err)
			continue
		}
		all = append(all, records...)
	}

	return o.persist(ctx, all, nil)
}

// RunBroker crawls a single broker on demand. Records from other brokers
// already in the snapshot are kept.
func (o *Orchestrator) RunBroker(ctx context.Context, brokerID string) (added, total int, err error) {
	if _, ok := o.cfg.Brokers[brokerID]; !ok {
		return 0, 0, fmt.Errorf("unknown broker: %s", brokerID)
	}
	if o.IsPaused() {
		log.Println("Crawler is paused, skipping run")
		return 0, 0, nil
	}

	records, err := o.crawlBroker(ctx, brokerID)
	if err != nil {
		return 0, 0, err
	}

	kept, err := o.dataset.ReadSnapshot(ctx, 0)
	if err != nil {
		return 0, 0, fmt.Errorf("read snapshot: %w", err)
	}
	var others []models.ListingRecord
	for _, r := range kept {
		if r.Broker != brokerID {
			others = append(others, r)
		}
	}
	return o.persist(ctx, records, others)
}

// crawlBroker runs discovery and the fetch/extract pool for one broker,
// recording the run in the operational store as it goes.
func (o *Orchestrator) crawlBroker(ctx context.Context, brokerID string) ([]models.ListingRecord, error) {
	brokerCfg := o.cfg.Brokers[brokerID]
	adapter := o.adapters[brokerID]
	startedAt := time.Now()

	run := &models.CrawlRun{
		UID:       uuid.NewString(),
		BrokerID:  brokerID,
		StartedAt: startedAt,
		Status:    models.RunStatusRunning,
	}
	runID, err := o.ops.CreateRun(run)
	if err != nil {
		return nil, fmt.Errorf("create run record: %w", err)
	}
	run.ID = runID

	finish := func(status models.RunStatus) {
		now := time.Now()
		run.FinishedAt = &now
		run.Status = status
		if err := o.ops.UpdateRun(run); err != nil {
			log.Printf("Update run %s: %v", run.UID, err)
		}
		if err := o.ops.UpdateBrokerStats(brokerID, startedAt, status, run.RecordsExtracted, 0); err != nil {
			log.Printf("Update broker stats %s: %v", brokerID, err)
		}
		observability.RunDuration.WithLabelValues(brokerID).Observe(now.Sub(startedAt).Seconds())
	}

	o.logRun(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting crawl for %s", brokerCfg.Name), brokerID)

	urls, tiles, err := discoverDetailURLs(ctx, o.fetcher, brokerCfg)
	if err != nil {
		o.logRun(run.ID, models.LogLevelError, fmt.Sprintf("Discovery failed: %v", err), brokerID)
		run.ErrorsCount++
		finish(models.RunStatusFailed)
		return nil, err
	}
	run.URLsDiscovered = len(urls)
	o.logRun(run.ID, models.LogLevelInfo, fmt.Sprintf("Discovered %d detail URLs", len(urls)), brokerID)

	var (
		mu      sync.Mutex
		records []models.ListingRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Crawler.StaticWorkers)

	for _, pageURL := range urls {
		pageURL := pageURL
		g.Go(func() error {
			record, err := o.processDetail(gctx, brokerCfg, adapter, pageURL, tiles[pageURL])

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				// One bad page never sinks the run.
				run.ErrorsCount++
				observability.FetchErrors.WithLabelValues(brokerID).Inc()
				log.Printf("[%s] %s: %v", brokerID, pageURL, err)
			case record == nil:
				run.PagesFetched++
				run.RecordsRejected++
				observability.RecordsRejected.WithLabelValues(brokerID).Inc()
			default:
				run.PagesFetched++
				run.RecordsExtracted++
				observability.RecordsExtracted.WithLabelValues(brokerID).Inc()
				records = append(records, *record)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		finish(models.RunStatusFailed)
		return nil, err
	}

	finish(models.RunStatusCompleted)
	o.logRun(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Crawl finished: %d records from %d pages (%d rejected, %d errors)",
			run.RecordsExtracted, run.PagesFetched, run.RecordsRejected, run.ErrorsCount), brokerID)
	return records, nil
}

// processDetail fetches one detail page and extracts a record. A nil record
// with nil error means the page carried no economic signal.
func (o *Orchestrator) processDetail(ctx context.Context, brokerCfg *config.BrokerConfig, adapter Adapter, pageURL string, tile TilePrices) (*models.ListingRecord, error) {
	html, mode, err := o.fetchDetail(ctx, brokerCfg, pageURL)
	if err != nil {
		return nil, err
	}
	observability.PagesFetched.WithLabelValues(brokerCfg.ID, mode).Inc()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	fields := adapter.ExtractDetail(doc, pageURL)
	if fields == nil {
		return nil, nil
	}
	applyTilePrices(fields, tile)
	if !fields.HasEconomicSignal() {
		return nil, nil
	}

	record := models.NewListingRecord(brokerCfg.ID, pageTitle(doc), pageURL, fields, time.Now())
	return &record, nil
}

// applyTilePrices backstops a detail page with prices pre-harvested off its
// archive tile. A listing that publishes its price only on the tile still
// gets one: detail asking price wins, then the tile's asking price, then the
// tile's appraised value.
func applyTilePrices(fs *models.FieldSet, tile TilePrices) {
	if fs.AppraisedValue == nil {
		fs.AppraisedValue = tile.AppraisedValue
	}
	if fs.AskingPrice == nil {
		if tile.AskingPrice != nil {
			fs.AskingPrice = tile.AskingPrice
		} else if tile.AppraisedValue != nil {
			fs.AskingPrice = tile.AppraisedValue
		}
	}
}

// fetchDetail renders when the broker needs it, with a static fallback so a
// browser hiccup still yields whatever the server sends directly.
func (o *Orchestrator) fetchDetail(ctx context.Context, brokerCfg *config.BrokerConfig, pageURL string) (html, mode string, err error) {
	if brokerCfg.RenderDetail {
		html, err = o.fetcher.Rendered(ctx, pageURL, brokerCfg.WaitSelectorDetail)
		if err == nil {
			return html, "rendered", nil
		}
		log.Printf("[%s] rendered fetch failed, retrying static: %s: %v", brokerCfg.ID, pageURL, err)
	}
	html, err = o.fetcher.Static(ctx, pageURL)
	if err != nil {
		return "", "", err
	}
	return html, "static", nil
}

// persist writes the snapshot tier (fresh records plus any carried-over rows,
// last fetch of a URL winning) and merges curatable rows into the archive.
func (o *Orchestrator) persist(ctx context.Context, fresh, carryOver []models.ListingRecord) (int, int, error) {
	combined := make([]models.ListingRecord, 0, len(carryOver)+len(fresh))
	index := make(map[string]int, len(carryOver)+len(fresh))
	for _, r := range append(carryOver, fresh...) {
		if i, ok := index[r.URL]; ok {
			combined[i] = r
			continue
		}
		index[r.URL] = len(combined)
		combined = append(combined, r)
	}

	if err := o.dataset.WriteSnapshot(ctx, combined); err != nil {
		return 0, 0, fmt.Errorf("write snapshot: %w", err)
	}

	var curated []models.CuratedRow
	for _, r := range fresh {
		if row := r.Curate(); row.HasNumericValue() {
			curated = append(curated, row)
		}
	}
	added, total, err := o.dataset.MergeCurated(ctx, curated)
	if err != nil {
		return 0, 0, fmt.Errorf("merge curated archive: %w", err)
	}
	observability.CuratedArchiveSize.Set(float64(total))
	log.Printf("Dataset updated: %d snapshot rows, %d new curated profiles (%d total)",
		len(combined), added, total)
	return added, total, nil
}

func (o *Orchestrator) logRun(runID int64, level models.LogLevel, message, brokerID string) {
	log.Printf("[%s] %s", brokerID, message)
	if err := o.ops.Log(&runID, level, message, brokerID); err != nil {
		log.Printf("Write crawl log: %v", err)
	}
}

// pageTitle prefers the first h1 over the document title, which usually
// carries site branding.
func pageTitle(doc *goquery.Document) string {
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return cleanText(doc.Find("title").First().Text())
}
