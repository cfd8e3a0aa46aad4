package server

import (
	"encoding/json"
	"net/http"

	"remotemcp/internal/oauth"
)

// registrationResponse is the RFC 7591 registration response. The plaintext
// secret appears here once and is never retrievable again.
type registrationResponse struct {
	ClientID                string   `json:"client_id"`
	ClientSecret            string   `json:"client_secret"`
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	Scope                   string   `json:"scope"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at"`
	ClientSecretExpiresAt   int64    `json:"client_secret_expires_at"`
}

// handleRegister runs dynamic client registration.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var meta oauth.ClientMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		s.writeOAuthError(w, oauth.ErrInvalidClientMetadata("request body is not valid JSON"))
		return
	}

	client, secret, err := s.clients.Register(meta)
	if err != nil {
		s.writeOAuthError(w, asOAuthError(err))
		return
	}

	s.auditor.Record(oauth.AuditClientRegistered, "", client.ClientID, client.ClientName)

	writeJSON(w, http.StatusCreated, registrationResponse{
		ClientID:                client.ClientID,
		ClientSecret:            secret,
		ClientName:              client.ClientName,
		RedirectURIs:            client.RedirectURIs,
		GrantTypes:              client.GrantTypes,
		ResponseTypes:           client.ResponseTypes,
		Scope:                   client.Scope,
		TokenEndpointAuthMethod: client.TokenEndpointAuthMethod,
		ClientIDIssuedAt:        client.CreatedAt.Unix(),
		ClientSecretExpiresAt:   0,
	})
}
