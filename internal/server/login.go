package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"remotemcp/internal/identity"
	"remotemcp/internal/oauth"
	"remotemcp/pkg/logging"
)

// loginRequest is the login endpoint's JSON body, posted by the login page.
type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Remember      bool   `json:"remember"`
	ClientID      string `json:"client_id"`
	RedirectURI   string `json:"redirect_uri"`
	State         string `json:"state"`
	CodeChallenge string `json:"code_challenge"`
}

// handleLogin verifies credentials, opens a browser session, and hands the
// login page a redirect URL carrying a fresh authorization code.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeOAuthError(w, oauth.ErrInvalidRequest("request body is not valid JSON"))
		return
	}

	if !s.clients.IsRedirectAllowed(req.ClientID, req.RedirectURI) {
		s.writeOAuthError(w, oauth.ErrInvalidRequest(
			"redirect_uri is not registered for this client"))
		return
	}

	record, err := s.provider.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrServiceUnavailable) {
			s.auditor.Record(oauth.AuditLoginFailed, "", req.ClientID, "identity service unavailable")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "Authentication service unavailable",
			})
			return
		}

		s.auditor.Record(oauth.AuditLoginFailed, "", req.ClientID, "invalid credentials for "+req.Username)
		w.Header().Set("WWW-Authenticate",
			oauth.FormatWWWAuthenticate(s.cfg.Server.PublicURL, "invalid_credentials", ""))
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "Invalid credentials",
		})
		return
	}

	s.users.Put(*record)

	session, err := s.sessions.Create(record.ID, record.Username, req.Remember)
	if err != nil {
		s.writeOAuthError(w, asOAuthError(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauth.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})

	code, err := s.codes.Issue(record.ID, req.ClientID, req.RedirectURI, req.CodeChallenge)
	if err != nil {
		s.writeOAuthError(w, asOAuthError(err))
		return
	}

	s.auditor.Record(oauth.AuditLoginSucceeded, record.ID, req.ClientID, "")
	s.auditor.Record(oauth.AuditCodeIssued, record.ID, req.ClientID, "via login")

	logging.Info("OAuth", "User %s logged in for client %s", record.Username, req.ClientID)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"redirect_url": callbackURL(req.RedirectURI, code.Code, req.State),
	})
}

var loginPageTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="ro">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Autentificare - Academia de Poliție MCP</title>
<style>
body { font-family: system-ui, sans-serif; background: #f3f4f6; display: flex; justify-content: center; padding-top: 8vh; }
form { background: #fff; padding: 2rem; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.1); width: 320px; }
h1 { font-size: 1.2rem; margin-top: 0; }
label { display: block; margin-top: 1rem; font-size: .9rem; }
input[type=text], input[type=password] { width: 100%; padding: .5rem; margin-top: .25rem; box-sizing: border-box; }
button { margin-top: 1.5rem; width: 100%; padding: .6rem; background: #1d4ed8; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
.error { color: #b91c1c; margin-top: 1rem; font-size: .9rem; }
</style>
</head>
<body>
<form id="login-form">
<h1>Autentificare</h1>
<label>Utilizator<input type="text" name="username" autocomplete="username" required></label>
<label>Parolă<input type="password" name="password" autocomplete="current-password" required></label>
<label><input type="checkbox" name="remember"> Ține-mă minte</label>
<button type="submit">Autorizează</button>
<div class="error" id="error"></div>
</form>
<script>
const params = new URLSearchParams(window.location.search);
document.getElementById('login-form').addEventListener('submit', async (e) => {
  e.preventDefault();
  const form = e.target;
  const resp = await fetch('/oauth/login', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({
      username: form.username.value,
      password: form.password.value,
      remember: form.remember.checked,
      client_id: params.get('client_id') || '',
      redirect_uri: params.get('redirect_uri') || '',
      state: params.get('state') || '',
      code_challenge: params.get('code_challenge') || ''
    })
  });
  const data = await resp.json();
  if (resp.ok && data.redirect_url) {
    window.location = data.redirect_url;
  } else {
    document.getElementById('error').textContent = data.error || 'Autentificare eșuată';
  }
});
</script>
</body>
</html>`))

// handleLoginPage serves the login form. The OAuth request parameters ride
// in the query string and are posted back by the page's script.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginPageTemplate.Execute(w, nil); err != nil {
		logging.Error("HTTP", err, "Failed to render login page")
	}
}
