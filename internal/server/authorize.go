package server

import (
	"net/http"
	"net/url"

	"remotemcp/internal/oauth"
	"remotemcp/pkg/logging"
)

// handleAuthorize runs the authorization endpoint. An authenticated browser
// session yields an immediate redirect back to the client with a fresh
// code; otherwise the user is sent to the login page with the request
// parameters carried along.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")
	codeChallenge := q.Get("code_challenge")
	resource := q.Get("resource")

	if clientID == "" || redirectURI == "" || resource == "" {
		s.writeOAuthError(w, oauth.ErrInvalidRequest(
			"Missing required parameters: client_id, redirect_uri, and resource are mandatory"))
		return
	}
	if resource != s.cfg.Server.PublicURL {
		s.writeOAuthError(w, oauth.ErrInvalidTarget(
			"Invalid resource parameter. Expected: "+s.cfg.Server.PublicURL))
		return
	}
	if responseType := q.Get("response_type"); responseType != "" && responseType != "code" {
		s.writeOAuthError(w, oauth.ErrUnsupportedResponseType(
			"Only the code response type is supported"))
		return
	}
	if method := q.Get("code_challenge_method"); method != "" && method != oauth.PKCEMethodS256 {
		s.writeOAuthError(w, oauth.ErrInvalidRequest(
			"Only the S256 code challenge method is supported"))
		return
	}
	if !s.clients.IsRedirectAllowed(clientID, redirectURI) {
		s.writeOAuthError(w, oauth.ErrInvalidRequest(
			"redirect_uri is not registered for this client"))
		return
	}

	// A live session means the user already authenticated in this browser.
	if cookie, err := r.Cookie(oauth.SessionCookieName); err == nil {
		if session, ok := s.sessions.Get(cookie.Value); ok {
			code, err := s.codes.Issue(session.UserID, clientID, redirectURI, codeChallenge)
			if err != nil {
				s.writeOAuthError(w, asOAuthError(err))
				return
			}
			s.auditor.Record(oauth.AuditCodeIssued, session.UserID, clientID, "via session")

			logging.Info("OAuth", "User %s authorized client %s via session", session.UserID, clientID)
			http.Redirect(w, r, callbackURL(redirectURI, code.Code, state), http.StatusFound)
			return
		}
	}

	// No session: bounce to the login page with the request carried along.
	loginParams := url.Values{}
	loginParams.Set("client_id", clientID)
	loginParams.Set("redirect_uri", redirectURI)
	loginParams.Set("state", state)
	loginParams.Set("code_challenge", codeChallenge)
	http.Redirect(w, r, "/login.html?"+loginParams.Encode(), http.StatusFound)
}

// callbackURL appends the code and optional state to the redirect URI.
func callbackURL(redirectURI, code, state string) string {
	u := redirectURI + "?code=" + url.QueryEscape(code)
	if state != "" {
		u += "&state=" + url.QueryEscape(state)
	}
	return u
}
