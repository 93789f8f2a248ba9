// Package api implements the small HTTP status surface the bot exposes in
// continuous mode: a liveness check and a summary of the most recent pass.
// It is read-only — nothing about the reminder workflow is driven over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nyashahama/invoice-reminder-bot/internal/bot"
)

// Status is the narrow view of the runner the server needs. The concrete
// implementation is *bot.Runner; tests inject a stub.
type Status interface {
	// LastPass returns the most recent pass summary, false if none yet.
	LastPass() (bot.PassSummary, bool)

	// NextRun reports when the next pass is due.
	NextRun() time.Time
}

// Server serves the status routes. Construct it with NewServer.
type Server struct {
	status  Status
	logger  *slog.Logger
	started time.Time
}

// NewServer wires the chi router around the given runner view. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(status Status, logger *slog.Logger) http.Handler {
	s := &Server{
		status:  status,
		logger:  logger,
		started: time.Now(),
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/status", s.handleStatus)

	return r
}

// statusResponse is the /status payload. LastPass is null until the first
// pass completes; NextRun is omitted until then too.
type statusResponse struct {
	Status   string           `json:"status"`
	Uptime   string           `json:"uptime"`
	LastPass *bot.PassSummary `json:"last_pass"`
	NextRun  *time.Time       `json:"next_run,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if summary, ok := s.status.LastPass(); ok {
		resp.LastPass = &summary
		next := s.status.NextRun()
		resp.NextRun = &next
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("status: encode response", "error", err)
	}
}
