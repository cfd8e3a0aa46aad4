package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"remotemcp/internal/config"
	"remotemcp/internal/oauth"
)

const testPublicURL = "https://mcp.academiadepolitie.com:8443"

// newTestServer builds a full server against a stubbed identity backend and
// a stubbed tools backend. The returned httptest server serves the complete
// handler chain.
func newTestServer(t *testing.T, testMode bool) (*Server, *httptest.Server) {
	t.Helper()

	identityBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["username"] == "maria" && req["password"] == "hunter2" {
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"user": map[string]any{
					"id":        4010,
					"username":  "maria",
					"email":     "maria@example.com",
					"name":      "Maria P",
					"api_token": "backend-jwt",
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid credentials"})
	}))
	t.Cleanup(identityBackend.Close)

	toolsBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(toolsBackend.Close)

	cfg := config.GetDefaultConfig()
	cfg.Server.PublicURL = testPublicURL
	cfg.Identity.VerifyURL = identityBackend.URL
	cfg.Identity.TestMode = testMode
	cfg.Tools.APIBaseURL = toolsBackend.URL
	cfg.Logging.Level = "error"

	srv := New(&cfg)
	t.Cleanup(srv.closeStores)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestRootAndHealth(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var root map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
	require.Equal(t, "academiadepolitie-remote-mcp", root["service"])
	require.Equal(t, "ready", root["status"])

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "healthy", health["status"])
}

func TestDiscoveryDocuments(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/.well-known/oauth-authorization-server")
	require.NoError(t, err)
	defer resp.Body.Close()

	var meta map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	require.Equal(t, testPublicURL, meta["issuer"])
	require.Equal(t, testPublicURL+"/oauth/authorize", meta["authorization_endpoint"])
	require.Equal(t, testPublicURL+"/oauth/token", meta["token_endpoint"])
	require.Equal(t, []any{"S256"}, meta["code_challenge_methods_supported"])
	require.Equal(t, []any{"authorization_code"}, meta["grant_types_supported"])

	resp, err = http.Get(ts.URL + "/.well-known/oauth-protected-resource")
	require.NoError(t, err)
	defer resp.Body.Close()

	var prm map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prm))
	require.Equal(t, testPublicURL, prm["resource"])
	require.Equal(t, []any{testPublicURL}, prm["authorization_servers"])

	resp, err = http.Get(ts.URL + "/.well-known/openid-configuration")
	require.NoError(t, err)
	defer resp.Body.Close()

	var oidc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&oidc))
	require.Equal(t, testPublicURL, oidc["issuer"])
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestAuthorize_ParameterValidation(t *testing.T) {
	_, ts := newTestServer(t, false)

	cases := []struct {
		name       string
		query      url.Values
		wantStatus int
		wantError  string
	}{
		{
			"missing resource",
			url.Values{"client_id": {"claude"}, "redirect_uri": {"https://claude.ai/api/mcp/auth_callback"}},
			http.StatusBadRequest, "invalid_request",
		},
		{
			"wrong resource",
			url.Values{"client_id": {"claude"}, "redirect_uri": {"https://claude.ai/api/mcp/auth_callback"}, "resource": {"https://other.example.com"}},
			http.StatusBadRequest, "invalid_target",
		},
		{
			"unsupported response type",
			url.Values{"client_id": {"claude"}, "redirect_uri": {"https://claude.ai/api/mcp/auth_callback"}, "resource": {testPublicURL}, "response_type": {"token"}},
			http.StatusBadRequest, "unsupported_response_type",
		},
		{
			"unsupported challenge method",
			url.Values{"client_id": {"claude"}, "redirect_uri": {"https://claude.ai/api/mcp/auth_callback"}, "resource": {testPublicURL}, "code_challenge_method": {"plain"}},
			http.StatusBadRequest, "invalid_request",
		},
		{
			"unregistered redirect",
			url.Values{"client_id": {"claude"}, "redirect_uri": {"https://evil.com/cb"}, "resource": {testPublicURL}},
			http.StatusBadRequest, "invalid_request",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/oauth/authorize?" + tc.query.Encode())
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.wantStatus, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tc.wantError, body["error"])
		})
	}
}

func TestAuthorize_NoSessionRedirectsToLogin(t *testing.T) {
	_, ts := newTestServer(t, false)

	q := url.Values{
		"client_id":      {"claude"},
		"redirect_uri":   {"https://claude.ai/api/mcp/auth_callback"},
		"resource":       {testPublicURL},
		"state":          {"xyz"},
		"code_challenge": {"abc"},
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/oauth/authorize?"+q.Encode(), nil)
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/login.html?"), "got %q", location)
	require.Contains(t, location, "client_id=claude")
	require.Contains(t, location, "state=xyz")
}

func TestRegister(t *testing.T) {
	_, ts := newTestServer(t, false)

	body, _ := json.Marshal(map[string]any{
		"client_name":   "Example Client",
		"redirect_uris": []string{"https://example.com/callback"},
	})
	resp, err := http.Post(ts.URL+"/oauth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reg map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))
	require.True(t, strings.HasPrefix(reg["client_id"].(string), "client_"))
	require.Len(t, reg["client_secret"].(string), 64)
	require.Equal(t, float64(0), reg["client_secret_expires_at"])
	require.NotZero(t, reg["client_id_issued_at"])
}

func TestRegister_InvalidMetadata(t *testing.T) {
	_, ts := newTestServer(t, false)

	body, _ := json.Marshal(map[string]any{"client_name": "No Redirects"})
	resp, err := http.Post(ts.URL+"/oauth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body2 map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body2))
	require.Equal(t, "invalid_client_metadata", body2["error"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, ts := newTestServer(t, false)

	body, _ := json.Marshal(map[string]any{
		"username":     "maria",
		"password":     "wrong",
		"client_id":    "claude",
		"redirect_uri": "https://claude.ai/api/mcp/auth_callback",
	})
	resp, err := http.Post(ts.URL+"/oauth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "invalid_credentials")
}

func TestToken_GrantTypeHandling(t *testing.T) {
	_, ts := newTestServer(t, false)

	cases := []struct {
		grantType  string
		wantStatus int
	}{
		{"refresh_token", http.StatusNotImplemented},
		{"client_credentials", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}

	for _, tc := range cases {
		form := url.Values{"grant_type": {tc.grantType}}
		resp, err := http.PostForm(ts.URL+"/oauth/token", form)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, tc.wantStatus, resp.StatusCode, "grant_type %q", tc.grantType)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "unsupported_grant_type", body["error"])
	}
}

func TestToken_InvalidClient(t *testing.T) {
	_, ts := newTestServer(t, false)

	form := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {"code_bogus"},
		"client_id":  {"client_unknown"},
		"resource":   {testPublicURL},
	}
	resp, err := http.PostForm(ts.URL+"/oauth/token", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_client"`)
}

// loginAndGetCode runs the login endpoint and extracts the issued code from
// the returned redirect URL.
func loginAndGetCode(t *testing.T, client *http.Client, baseURL, clientID, redirectURI, state, challenge string) string {
	t.Helper()

	body, _ := json.Marshal(map[string]any{
		"username":       "maria",
		"password":       "hunter2",
		"client_id":      clientID,
		"redirect_uri":   redirectURI,
		"state":          state,
		"code_challenge": challenge,
	})
	resp, err := client.Post(baseURL+"/oauth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Success     bool   `json:"success"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Success)

	parsed, err := url.Parse(result.RedirectURL)
	require.NoError(t, err)
	require.Equal(t, state, parsed.Query().Get("state"))
	code := parsed.Query().Get("code")
	require.True(t, strings.HasPrefix(code, "code_"))
	return code
}

// TestEndToEnd_CodeExchange drives the full flow with a dynamically
// registered client and the standard oauth2 client library doing the
// exchange.
func TestEndToEnd_CodeExchange(t *testing.T) {
	_, ts := newTestServer(t, false)

	// Register a client.
	regBody, _ := json.Marshal(map[string]any{
		"client_name":   "E2E Client",
		"redirect_uris": []string{"https://example.com/callback"},
	})
	resp, err := http.Post(ts.URL+"/oauth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	var reg struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))
	resp.Body.Close()

	// Authenticate and collect a code bound to a PKCE challenge.
	verifier, err := oauth.GenerateVerifier()
	require.NoError(t, err)
	challenge := oauth.ChallengeFromVerifier(verifier)

	code := loginAndGetCode(t, http.DefaultClient, ts.URL, reg.ClientID, "https://example.com/callback", "st8", challenge)

	// Exchange via the oauth2 client library.
	conf := &oauth2.Config{
		ClientID:     reg.ClientID,
		ClientSecret: reg.ClientSecret,
		RedirectURL:  "https://example.com/callback",
		Endpoint: oauth2.Endpoint{
			TokenURL:  ts.URL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := conf.Exchange(context.Background(), code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
		oauth2.SetAuthURLParam("resource", testPublicURL),
	)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token.AccessToken, "tok_"))
	require.Equal(t, "Bearer", token.TokenType)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), token.Expiry, time.Minute)

	// The code is single use.
	_, err = conf.Exchange(context.Background(), code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
		oauth2.SetAuthURLParam("resource", testPublicURL),
	)
	require.Error(t, err)

	// The token opens the protected MCP endpoint.
	initReq := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"e2e","version":"1.0"}}}`
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(initReq))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	mcpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer mcpResp.Body.Close()
	require.Equal(t, http.StatusOK, mcpResp.StatusCode)

	// Without the token the same request bounces.
	req2, _ := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(initReq))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("Accept", "application/json, text/event-stream")
	noAuth, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	defer noAuth.Body.Close()
	require.Equal(t, http.StatusUnauthorized, noAuth.StatusCode)
	require.Contains(t, noAuth.Header.Get("WWW-Authenticate"), "resource_metadata")
}

// TestEndToEnd_SessionFlow exercises the browser path: login sets a session
// cookie, and a later authorize request with that cookie short-circuits
// straight to the callback redirect.
func TestEndToEnd_SessionFlow(t *testing.T) {
	srv, _ := newTestServer(t, false)

	// The session cookie is Secure, so the jar only keeps it over TLS.
	ts := httptest.NewTLSServer(srv.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	redirectURI := "https://claude.ai/api/mcp/auth_callback"
	_ = loginAndGetCode(t, client, ts.URL, "claude", redirectURI, "first", "")

	// The login response set a session cookie on the jar.
	serverURL, _ := url.Parse(ts.URL)
	var sessionCookie *http.Cookie
	for _, c := range jar.Cookies(serverURL) {
		if c.Name == oauth.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "expected a session cookie after login")
	require.True(t, strings.HasPrefix(sessionCookie.Value, "sess_"))

	// Authorize again: the session holds, so no login hop this time.
	q := url.Values{
		"client_id":    {"claude"},
		"redirect_uri": {redirectURI},
		"resource":     {testPublicURL},
		"state":        {"second"},
	}
	resp, err := client.Get(ts.URL + "/oauth/authorize?" + q.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(location.String(), redirectURI))
	require.Equal(t, "second", location.Query().Get("state"))
	require.True(t, strings.HasPrefix(location.Query().Get("code"), "code_"))
}

func TestMCPTest_OnlyInTestMode(t *testing.T) {
	_, tsOff := newTestServer(t, false)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	resp, err := http.Post(tsOff.URL+"/mcp-test", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, tsOn := newTestServer(t, true)

	initReq := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"inspector","version":"1.0"}}}`
	req, _ := http.NewRequest(http.MethodPost, tsOn.URL+"/mcp-test", strings.NewReader(initReq))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, false)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	req.Header.Set("Origin", "https://claude.ai")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://claude.ai", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	// Unlisted origins get no CORS headers.
	req2, _ := http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	req2.Header.Set("Origin", "https://evil.com")
	resp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestLoginPage(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/login.html?client_id=claude")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
