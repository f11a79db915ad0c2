// ABOUTME: HTTP server assembly wiring the auth gates, routes, and shutdown
// ABOUTME: Public routes are /, /login, and /join; everything else needs a token

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/varnhold/tollgate/internal/auth"
	"github.com/varnhold/tollgate/internal/config"
	"github.com/varnhold/tollgate/internal/store"
)

// Server owns the HTTP listener and the wired authentication pipeline.
type Server struct {
	config      *config.Config
	store       store.UserStore
	codec       *auth.Codec
	defaultRole auth.Role
	logger      *slog.Logger
	httpServer  *http.Server
	handler     http.Handler
}

// New creates a Server: it opens the user store, builds the token codec and
// gates from the configuration, and registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s, err := newWithStore(cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return s, nil
}

// newWithStore wires everything on top of an already-open store.
func newWithStore(cfg *config.Config, st store.UserStore, logger *slog.Logger) (*Server, error) {
	codec, err := auth.NewCodec([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating token codec: %w", err)
	}

	defaultRole := auth.RoleUser
	if cfg.Auth.DefaultRole != "" {
		defaultRole, err = auth.ParseRole(cfg.Auth.DefaultRole)
		if err != nil {
			return nil, fmt.Errorf("parsing default role: %w", err)
		}
	}

	s := &Server{
		config:      cfg,
		store:       st,
		codec:       codec,
		defaultRole: defaultRole,
		logger:      logger.With("component", "server"),
	}

	verifier := auth.NewVerifier(st, logger)
	loginGate := auth.NewLoginGate(verifier, codec, cfg.Auth.TokenTTL, logger)
	session := auth.SessionGate(codec, logger)
	requireAuth := auth.RequireAuthenticated(logger)
	requireAdmin := auth.RequireRole(auth.RoleAdmin, logger)

	mux := http.NewServeMux()

	// Public routes - reachable with no token
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /login", loginGate)
	mux.HandleFunc("POST /join", s.handleJoin)

	// Protected routes - SessionGate identifies, Require* rejects
	mux.Handle("GET /me", session(requireAuth(http.HandlerFunc(s.handleMe))))
	mux.Handle("GET /admin", session(requireAdmin(http.HandlerFunc(s.handleAdmin))))

	s.handler = withCORS(cfg.CORS, mux)

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", "addr", s.config.Server.HTTPAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return s.store.Close()
}
