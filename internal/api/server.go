package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/capture-service/internal/domain"
)

// ProgressSource reports how far the running batch has gotten.
type ProgressSource interface {
	Progress() domain.BatchSummary
}

// Server exposes health, progress, and metrics over HTTP while a long
// batch run is in flight.
type Server struct {
	httpServer *http.Server
	progress   ProgressSource
	logger     *zap.Logger
}

func NewServer(port string, progress ProgressSource, logger *zap.Logger) *Server {
	s := &Server{progress: progress, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.handleHealth)
	r.Get("/progress", s.handleProgress)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Shutdown. Run it in a goroutine; a status server
// failure must never take the batch down with it.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, s.progress.Progress())
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
