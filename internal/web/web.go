// Package web publishes the generated calendar files over HTTP so
// calendar clients can subscribe to them directly, without a separate
// hosting step.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wxcal/internal/config"
	appLog "wxcal/internal/log"
)

// Server exposes the output directory's calendars plus a health probe.
type Server struct {
	cfg *config.Config
	mux *chi.Mux
}

// NewServer constructs a Server for the given configuration.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Get("/health", s.handleHealth)
	s.mux.Get("/calendars", s.handleList)
	s.mux.Get("/calendars/{name}", s.handleCalendar)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleList returns the calendar filenames known to the configuration.
func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0)
	for _, loc := range s.cfg.ResolvedLocations() {
		if loc.OutputFile != "" {
			names = append(names, loc.OutputFile)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"calendars": names})
}

// handleCalendar serves a single generated .ics file. Only filenames
// that appear in the configuration are served, so the handler can never
// be used to read arbitrary files out of the output directory.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.knownCalendar(name) {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.cfg.OutputDir, name))
	if err != nil {
		appLog.Error("calendar read failed", err, "name", name)
		http.Error(w, "calendar not generated yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	_, _ = w.Write(data)
}

func (s *Server) knownCalendar(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || !strings.HasSuffix(name, ".ics") {
		return false
	}
	for _, loc := range s.cfg.ResolvedLocations() {
		if loc.OutputFile == name {
			return true
		}
	}
	return false
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("HTTP server listening", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
