package server

import (
	"net/http"
	"time"
)

const serviceVersion = "1.0.0"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service": "academiadepolitie-remote-mcp",
		"version": serviceVersion,
		"status":  "ready",
		"endpoints": map[string]string{
			"health":          "/health",
			"oauth_discovery": "/.well-known/oauth-authorization-server",
			"oauth_authorize": "/oauth/authorize",
			"oauth_token":     "/oauth/token",
			"mcp":             "/mcp",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   serviceVersion,
		"service":   "academiadepolitie-remote-mcp",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAuthServerMetadata serves the RFC 8414 authorization server
// metadata document.
func (s *Server) handleAuthServerMetadata(w http.ResponseWriter, r *http.Request) {
	issuer := s.cfg.Server.PublicURL
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                issuer,
		"authorization_endpoint":                issuer + "/oauth/authorize",
		"token_endpoint":                        issuer + "/oauth/token",
		"registration_endpoint":                 issuer + "/oauth/register",
		"token_endpoint_auth_methods_supported": []string{"client_secret_post", "none"},
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"code_challenge_methods_supported":      []string{"S256"},
		"service_documentation":                 "https://www.academiadepolitie.com/api/docs",
		"ui_locales_supported":                  []string{"ro", "en"},
	})
}

// handleOpenIDConfiguration serves an OpenID-flavored copy of the metadata
// for clients that only probe the OIDC well-known path.
func (s *Server) handleOpenIDConfiguration(w http.ResponseWriter, r *http.Request) {
	issuer := s.cfg.Server.PublicURL
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                issuer,
		"authorization_endpoint":                issuer + "/oauth/authorize",
		"token_endpoint":                        issuer + "/oauth/token",
		"registration_endpoint":                 issuer + "/oauth/register",
		"jwks_uri":                              issuer + "/.well-known/jwks.json",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post", "none"},
		"code_challenge_methods_supported":      []string{"S256"},
	})
}

// handleProtectedResourceMetadata serves the RFC 9728 protected resource
// metadata document clients use to find the authorization server.
func (s *Server) handleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"resource":              s.cfg.Server.PublicURL,
		"authorization_servers": []string{s.cfg.Server.PublicURL},
	})
}
