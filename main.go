package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"practicescout/api"
	"practicescout/config"
	"practicescout/fetch"
	"practicescout/httputil"
	"practicescout/logging"
	"practicescout/pricing"
	"practicescout/scheduler"
	"practicescout/scraper"
	"practicescout/storage"
	"practicescout/workers"
)

var (
	scrapeNow  = flag.Bool("scrape", false, "Run a full crawl once and exit")
	onlyBroker = flag.String("broker", "", "Limit -scrape to a single broker id")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("crawler.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting practicescout...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d broker configs", len(cfg.Brokers))
	for id, broker := range cfg.Brokers {
		log.Printf("  - %s (%s)", broker.Name, id)
	}

	clients := httputil.NewClients(&cfg.Proxy)
	if cfg.Proxy.URL != "" {
		log.Println("Scraping through proxy")
	}

	ctx := context.Background()

	dataset, cleanup, err := openDataset(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer cleanup()

	opsStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer opsStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	fetcher := fetch.NewClient(clients.Scraping, cfg.Crawler.RenderWorkers, cfg.Crawler.HostRPS)
	defer fetcher.Close()

	orchestrator := scraper.NewOrchestrator(cfg, opsStore, dataset, fetcher)

	if *scrapeNow {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Crawler.RunTimeout)
		defer cancel()

		log.Println("Running crawl...")
		var added, total int
		if *onlyBroker != "" {
			added, total, err = orchestrator.RunBroker(runCtx, *onlyBroker)
		} else {
			added, total, err = orchestrator.RunAll(runCtx)
		}
		if err != nil {
			log.Fatalf("Crawl failed: %v", err)
		}
		log.Printf("Crawl complete! %d new curated profiles (%d total)", added, total)
		return
	}

	// Daemon mode.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, orchestrator, opsStore)

	healthcheck := workers.NewHealthcheckWorker(dataset, opsStore, clients.Scraping)
	go healthcheck.Run(ctx)
	sched.SetHealthcheckWorker(healthcheck)
	log.Println("Healthcheck worker started")

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	benchmarks, err := pricing.LoadBenchmarks(filepath.Join(cfg.Dataset.Dir, "benchmarks.csv"))
	if err != nil {
		log.Printf("Warning: no benchmark table: %v", err)
	}

	server := api.NewServer(cfg.APIAddr, dataset, opsStore, benchmarks)
	server.Start()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

// openDataset picks Postgres when DATABASE_URL is configured, the CSV pair
// under the data directory otherwise.
func openDataset(ctx context.Context, cfg *config.Config) (storage.Dataset, func(), error) {
	if cfg.Dataset.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.Dataset.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Dataset backend: Postgres")
		return pg, pg.Close, nil
	}

	csvStore, err := storage.NewCSVStore(cfg.Dataset.Dir)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Dataset backend: CSV files in %s/", cfg.Dataset.Dir)
	return csvStore, func() {}, nil
}
