package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"remotemcp/internal/config"
	"remotemcp/internal/identity"
	"remotemcp/internal/mcpserver"
	"remotemcp/internal/oauth"
	"remotemcp/internal/tools"
	"remotemcp/pkg/logging"
)

// Server is the HTTP surface: OAuth endpoints, discovery documents, and the
// protected MCP endpoint.
type Server struct {
	cfg *config.Config

	clients  *oauth.ClientRegistry
	codes    *oauth.CodeStore
	tokens   *oauth.TokenStore
	sessions *oauth.SessionStore
	auditor  *oauth.Auditor

	provider identity.Provider
	users    *identity.Directory

	mcp *mcpserver.Service

	httpServer *http.Server
}

// New wires the full service from configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		clients: oauth.NewClientRegistry(oauth.TrustedClient{
			ID:           cfg.OAuth.TrustedClient.ID,
			Name:         cfg.OAuth.TrustedClient.Name,
			RedirectURIs: cfg.OAuth.TrustedClient.RedirectURIs,
			OriginPrefix: cfg.OAuth.TrustedClient.TrustedOriginPrefix,
		}),
		codes:    oauth.NewCodeStore(),
		tokens:   oauth.NewTokenStore(),
		sessions: oauth.NewSessionStore(cfg.OAuth.SessionRememberTTL),
		auditor:  oauth.NewAuditor(),
		users:    identity.NewDirectory(),
	}

	s.provider = identity.NewHTTPProvider(
		cfg.Identity.VerifyURL,
		cfg.Identity.APIKey,
		cfg.Identity.JWTSecret,
		cfg.Identity.Timeout,
	)
	if cfg.Identity.TestMode {
		logging.Warn("Bootstrap", "Test mode is enabled: static test credentials and /mcp-test are active")
		s.provider = identity.Chain{identity.NewTestProvider(), s.provider}
	}

	toolClient := tools.NewClient(cfg.Tools.APIBaseURL, cfg.Tools.Timeout)
	s.mcp = mcpserver.New(toolClient, s.tokens, s.users, cfg.Server.PublicURL)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(s.router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// router mounts every endpoint.
func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/.well-known/oauth-authorization-server", s.handleAuthServerMetadata)
	mux.HandleFunc("/.well-known/openid-configuration", s.handleOpenIDConfiguration)
	mux.HandleFunc("/.well-known/oauth-protected-resource", s.handleProtectedResourceMetadata)

	mux.HandleFunc("/oauth/authorize", s.handleAuthorize)
	mux.HandleFunc("/oauth/token", s.handleToken)
	mux.HandleFunc("/oauth/login", s.handleLogin)
	mux.HandleFunc("/oauth/register", s.handleRegister)
	mux.HandleFunc("/login.html", s.handleLoginPage)

	mux.Handle("/mcp", s.mcp.Handler())
	if s.cfg.Identity.TestMode {
		mux.Handle("/mcp-test", s.mcp.UngatedHandler())
	}

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout. Store sweepers are stopped on the way out.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("HTTP", "Listening on %s (public URL %s)", s.httpServer.Addr, s.cfg.Server.PublicURL)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeStores()
		return err
	case <-ctx.Done():
	}

	logging.Info("HTTP", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.closeStores()
	return err
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) closeStores() {
	s.codes.Close()
	s.tokens.Close()
}

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("HTTP", err, "Failed to encode response")
	}
}

// writeOAuthError renders a structured OAuth error as its canonical JSON
// body and status. invalid_client responses carry a WWW-Authenticate
// challenge per RFC 6749 section 5.2.
func (s *Server) writeOAuthError(w http.ResponseWriter, err *oauth.Error) {
	if err.Code == oauth.ErrorCodeInvalidClient {
		w.Header().Set("WWW-Authenticate",
			oauth.FormatWWWAuthenticate(s.cfg.Server.PublicURL, err.Code, err.Description))
	}
	writeJSON(w, err.Status, map[string]string{
		"error":             err.Code,
		"error_description": err.Description,
	})
}

// asOAuthError normalizes any error into a structured OAuth error,
// converting unknown errors into an opaque server_error.
func asOAuthError(err error) *oauth.Error {
	if oauthErr, ok := err.(*oauth.Error); ok {
		return oauthErr
	}
	logging.Error("HTTP", err, "Internal error")
	return oauth.ErrServerError("internal error")
}
