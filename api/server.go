package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"practicescout/models"
	"practicescout/pricing"
	"practicescout/storage"
)

// Server exposes the dataset, run history and the valuation model over HTTP.
type Server struct {
	addr       string
	dataset    storage.Dataset
	ops        *storage.SQLiteStore
	benchmarks []pricing.Benchmark
	httpServer *http.Server
}

func NewServer(addr string, dataset storage.Dataset, ops *storage.SQLiteStore, benchmarks []pricing.Benchmark) *Server {
	s := &Server{
		addr:       addr,
		dataset:    dataset,
		ops:        ops,
		benchmarks: benchmarks,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scraped", s.handleScraped)
	mux.HandleFunc("GET /api/benchmarks", s.handleBenchmarks)
	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/brokers", s.handleBrokers)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) Start() {
	go func() {
		log.Printf("API listening on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": "1.0"})
}

// handleScraped returns the latest snapshot, newest first, default 200 rows.
func (s *Server) handleScraped(w http.ResponseWriter, r *http.Request) {
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.dataset.ReadSnapshot(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read snapshot failed")
		log.Printf("API: read snapshot: %v", err)
		return
	}
	if records == nil {
		records = []models.ListingRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": records})
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	rows := s.benchmarks
	if p := strings.ToUpper(r.URL.Query().Get("province")); p != "" {
		filtered := []pricing.Benchmark{}
		for _, bm := range rows {
			if bm.Province == p {
				filtered = append(filtered, bm)
			}
		}
		rows = filtered
	}
	if rows == nil {
		rows = []pricing.Benchmark{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in pricing.Inputs
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Province == "" {
		in.Province = "ON"
	}
	writeJSON(w, http.StatusOK, pricing.BaselineEstimate(in, s.benchmarks))
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := s.ops.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read runs failed")
		log.Printf("API: read runs: %v", err)
		return
	}
	if runs == nil {
		runs = []models.CrawlRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": runs})
}

func (s *Server) handleBrokers(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.ops.GetBrokerStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read broker stats failed")
		log.Printf("API: read broker stats: %v", err)
		return
	}
	if stats == nil {
		stats = []models.BrokerStats{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": stats})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
