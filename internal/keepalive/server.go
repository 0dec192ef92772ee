// Package keepalive exposes the HTTP surface that hosting platforms and
// monitoring probes hit to keep the bot alive and observe it.
package keepalive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MediaSearchBot/internal/userstate"
)

// Counter reports how many records the index holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsSource provides the usage snapshot served on /status.
type StatsSource interface {
	SnapshotStats() userstate.Stats
}

// Server answers keep-alive pings, health checks and metrics scrapes.
type Server struct {
	http  *http.Server
	log   *zap.Logger
	index Counter
	stats StatsSource
}

// NewServer builds the server on addr. gatherer serves /metrics.
func NewServer(addr string, index Counter, stats StatsSource, gatherer prometheus.Gatherer, log *zap.Logger) *Server {
	s := &Server{log: log, index: index, stats: stats}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called. It returns http.ErrServerClosed on
// a clean shutdown.
func (s *Server) Start() error {
	s.log.Info("keep-alive server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "Media search bot is running.")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := map[string]any{"status": "ok"}
	code := http.StatusOK
	count, err := s.index.Count(ctx)
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		resp["status"] = "degraded"
		resp["error"] = err.Error()
		code = http.StatusServiceUnavailable
	} else {
		resp["indexed_files"] = count
	}

	writeJSON(w, code, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats := s.stats.SnapshotStats()
	resp := map[string]any{
		"total_queries": stats.TotalQueries,
		"total_files":   stats.TotalFilesIndexed,
		"total_users":   stats.TotalUsers,
		"banned_users":  stats.BannedUsers,
		"uptime":        time.Since(stats.StartTime).Round(time.Second).String(),
	}
	if count, err := s.index.Count(ctx); err == nil {
		resp["indexed_files"] = count
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
