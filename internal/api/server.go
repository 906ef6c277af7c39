// Package api exposes the optional HTTP side channel of a scrape run:
// health probes, Prometheus metrics, and the state of the current run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-scraper/internal/metrics"
	"github.com/JakeFAU/listing-scraper/internal/scraper"
)

// Run states reported by /v1/run.
const (
	StatePending  = "pending"
	StateRunning  = "running"
	StateFinished = "finished"
)

// RunStatus is the JSON body served by /v1/run.
type RunStatus struct {
	RunID     string         `json:"run_id"`
	State     string         `json:"state"`
	URLs      int            `json:"urls"`
	Workers   int            `json:"workers"`
	StartedAt time.Time      `json:"started_at,omitempty"`
	Stats     *scraper.Stats `json:"stats,omitempty"`
}

// Server serves the probe and metrics endpoints.
type Server struct {
	router chi.Router
	logger *zap.Logger
	clock  scraper.Clock

	mu     sync.RWMutex
	status RunStatus

	httpServer *http.Server
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runID string, clock scraper.Clock, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		logger: logger,
		clock:  clock,
		status: RunStatus{RunID: runID, State: StatePending},
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.InstrumentRoutes)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/v1/run", s.getRun)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MarkRunning records that the run has started over urls with workers.
func (s *Server) MarkRunning(urls, workers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = StateRunning
	s.status.URLs = urls
	s.status.Workers = workers
	s.status.StartedAt = s.clock.Now()
}

// MarkFinished records the final stats of the run.
func (s *Server) MarkFinished(stats scraper.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = StateFinished
	s.status.Stats = &stats
}

// Status returns a snapshot of the run state.
func (s *Server) Status() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Start listens on addr in the background. The bound address is returned so
// callers may pass ":0".
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("metrics server listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Shutdown stops the listener started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports ready once the run has started.
func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if s.Status().State == StatePending {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": StatePending})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getRun(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		reqID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Debug("request completed",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
