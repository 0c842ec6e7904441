package api

import (
	"context"
	"net/http"
	"time"

	"github.com/glvault/glvault/pkg/audit"
	"github.com/glvault/glvault/pkg/auth"
	"github.com/glvault/glvault/pkg/metrics"
	"github.com/glvault/glvault/pkg/relay"
	"github.com/glvault/glvault/pkg/vault"
)

// Server is glvault's HTTP entrypoint: the relay handler, the admin
// key/audit endpoints, and the operational /health and /metrics
// endpoints, all on one mux.
type Server struct {
	mux       *http.ServeMux
	verifier  *auth.Verifier
	store     *vault.Store
	auditLog  *audit.Log
	startedAt time.Time
	version   string
}

// NewServer builds the HTTP mux. relayHandler is mounted directly at
// /proxy; the remaining routes are this package's own admin handlers,
// each wrapped in the admin bearer-token middleware except /health
// and /metrics.
func NewServer(verifier *auth.Verifier, store *vault.Store, auditLog *audit.Log, relayHandler *relay.Handler, version string) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		verifier:  verifier,
		store:     store,
		auditLog:  auditLog,
		startedAt: time.Now(),
		version:   version,
	}

	s.mux.Handle("/proxy", relayHandler)
	s.mux.Handle("/keys/register", s.adminOnly("register", http.HandlerFunc(s.handleRegister)))
	s.mux.Handle("/keys/list", s.adminOnly("list", http.HandlerFunc(s.handleList)))
	s.mux.Handle("/keys/rotate", s.adminOnly("rotate", http.HandlerFunc(s.handleRotate)))
	s.mux.Handle("/keys/audit", s.adminOnly("audit", http.HandlerFunc(s.handleAudit)))
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", metrics.Handler())

	return s
}

// Start runs the HTTP server until ctx is canceled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the mux directly, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}
