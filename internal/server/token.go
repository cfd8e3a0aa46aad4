package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"remotemcp/internal/oauth"
	"remotemcp/pkg/logging"
)

// tokenRequest is the token endpoint's input, accepted as a form body or as
// JSON. Some MCP clients post JSON despite RFC 6749.
type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
	Resource     string `json:"resource"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseTokenRequest(r)
	if err != nil {
		s.writeOAuthError(w, asOAuthError(err))
		return
	}

	switch req.GrantType {
	case "authorization_code":
	case "refresh_token":
		// Recognized but not implemented: tokens live 24 hours and clients
		// re-run the code flow.
		s.writeOAuthError(w, oauth.ErrUnsupportedGrantType(
			"refresh_token grant is not implemented", http.StatusNotImplemented))
		return
	default:
		s.writeOAuthError(w, oauth.ErrUnsupportedGrantType(
			"Only authorization_code grant type is supported", http.StatusBadRequest))
		return
	}

	if req.Code == "" || req.ClientID == "" || req.Resource == "" {
		s.writeOAuthError(w, oauth.ErrInvalidRequest(
			"Missing required parameters: code, client_id, and resource are mandatory"))
		return
	}
	if req.Resource != s.cfg.Server.PublicURL {
		s.writeOAuthError(w, oauth.ErrInvalidTarget(
			"Invalid resource parameter. Expected: "+s.cfg.Server.PublicURL))
		return
	}

	client, err := s.clients.Validate(req.ClientID, req.ClientSecret)
	if err != nil {
		logging.Debug("OAuth", "Token request with invalid client %s: %v", req.ClientID, err)
		s.writeOAuthError(w, oauth.ErrInvalidClient("client authentication failed"))
		return
	}

	code, err := s.codes.Redeem(req.Code, client.ClientID, req.RedirectURI, req.CodeVerifier)
	if err != nil {
		s.auditor.Record(oauth.AuditTokenRejected, "", client.ClientID, err.Error())
		s.writeOAuthError(w, asOAuthError(err))
		return
	}

	token, err := s.tokens.Issue(code.UserID, client.ClientID, req.Resource, client.Scope)
	if err != nil {
		s.writeOAuthError(w, asOAuthError(err))
		return
	}
	s.auditor.Record(oauth.AuditTokenIssued, code.UserID, client.ClientID, "")

	logging.Info("OAuth", "Issued token for user %s via client %s", code.UserID, client.ClientID)
	writeJSON(w, http.StatusOK, oauth.TokenResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(token.ExpiresAt).Round(time.Second).Seconds()),
		Scope:       token.Scope,
		Audience:    token.Audience,
	})
}

// parseTokenRequest reads the body as a form or as JSON depending on the
// Content-Type header.
func parseTokenRequest(r *http.Request) (*tokenRequest, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, oauth.ErrInvalidRequest("request body is not valid JSON")
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, oauth.ErrInvalidRequest("request body is not a valid form")
	}
	return &tokenRequest{
		GrantType:    r.PostForm.Get("grant_type"),
		Code:         r.PostForm.Get("code"),
		ClientID:     r.PostForm.Get("client_id"),
		ClientSecret: r.PostForm.Get("client_secret"),
		RedirectURI:  r.PostForm.Get("redirect_uri"),
		CodeVerifier: r.PostForm.Get("code_verifier"),
		Resource:     r.PostForm.Get("resource"),
	}, nil
}
