package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/logger"
	"github.com/pfrederiksen/compilation-harvester/internal/scraper"
)

// Harvester runs one harvest for a date range
type Harvester interface {
	Harvest(ctx context.Context, r compilation.DateRange) (*scraper.Report, error)
}

// Options configures the server
type Options struct {
	DefaultFrom string
	DefaultTo   string
}

// Server serves the compilations API
type Server struct {
	harvester Harvester
	opts      Options
	handler   http.Handler
}

// New creates a Server
func New(h Harvester, opts Options) *Server {
	s := &Server{harvester: h, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /compilations", s.handleCompilations)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.handler = withCORS(withRequestLog(mux))
	return s
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

type compilationsResponse struct {
	RunID      string                `json:"runId"`
	Count      int                   `json:"count"`
	Items      []compilation.Result  `json:"items"`
	Failures   []scraper.PostFailure `json:"failures,omitempty"`
	DurationMs int64                 `json:"durationMs"`
}

type errorResponse struct {
	Error      string `json:"error"`
	DurationMs *int64 `json:"durationMs,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, logger.GetMetricsSnapshot())
}

func (s *Server) handleCompilations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	from := s.opts.DefaultFrom
	if q.Has("from") {
		from = q.Get("from")
	}
	to := s.opts.DefaultTo
	if q.Has("to") {
		to = q.Get("to")
	}
	fields := logger.Fields{"from": from, "to": to}
	logger.Info("GET /compilations start", fields)

	dateRange, err := compilation.RangeFromMonthYears(from, to)
	if err != nil {
		msg := "Invalid date format. Use mm/yyyy"
		if errors.Is(err, compilation.ErrInvertedRange) {
			msg = "from must be <= to"
		}
		logger.Warn("GET /compilations rejected", logger.Fields{"from": from, "to": to, "error": err.Error()})
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	report, err := s.harvester.Harvest(r.Context(), dateRange)
	durationMs := time.Since(start).Milliseconds()
	fields["duration_ms"] = durationMs
	if err != nil {
		logger.Error("GET /compilations error", fields, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), DurationMs: &durationMs})
		return
	}

	fields["count"] = len(report.Items)
	fields["run_id"] = report.RunID
	logger.Info("GET /compilations success", fields)

	writeJSON(w, http.StatusOK, compilationsResponse{
		RunID:      report.RunID,
		Count:      len(report.Items),
		Items:      report.Items,
		Failures:   report.Failures,
		DurationMs: durationMs,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Writing response failed", nil, err)
	}
}
