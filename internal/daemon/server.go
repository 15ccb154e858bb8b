package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/nbarraud/blogbuilder/internal/eventstore"
	"github.com/nbarraud/blogbuilder/internal/logfields"
	"github.com/nbarraud/blogbuilder/internal/metrics"
)

// Server serves the generated site plus the daemon API:
//
//	GET /healthz            liveness probe
//	GET /metrics            Prometheus metrics (when enabled)
//	GET /api/builds         recent build history
//	GET /api/builds/{id}    one build's full report
//	GET /...                static site from the output directory
type Server struct {
	httpSrv *http.Server
	siteDir string
	store   eventstore.Store
}

// NewServer assembles the daemon HTTP server. store may be nil (history
// endpoints then return 404); registry may be nil (no /metrics).
func NewServer(addr, siteDir string, store eventstore.Store, registry *prom.Registry) *Server {
	s := &Server{siteDir: siteDir, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if registry != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(registry))
	}
	if store != nil {
		mux.HandleFunc("GET /api/builds", s.handleListBuilds)
		mux.HandleFunc("GET /api/builds/{id}", s.handleGetBuild)
	}
	mux.Handle("GET /", http.FileServer(http.Dir(siteDir)))

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", s.httpSrv.Addr), logfields.Path(s.siteDir))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListRecent(r.Context(), 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []*eventstore.BuildRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, eventstore.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "build not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// The stored report is the full build report JSON; return it verbatim.
	if len(rec.Report) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(rec.Report)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", logfields.Error(err))
	}
}
