package mcpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"remotemcp/internal/identity"
	"remotemcp/internal/oauth"
	"remotemcp/pkg/logging"
)

// RequireToken wraps a protected handler with bearer token enforcement.
// Requests without a valid token bound to this server's canonical resource
// URL get a 401 with a WWW-Authenticate challenge pointing the client at
// the protected resource metadata.
type RequireToken struct {
	tokens   *oauth.TokenStore
	users    *identity.Directory
	resource string
	next     http.Handler
}

// NewRequireToken builds the request gate. resource is the canonical
// resource URL tokens must be bound to.
func NewRequireToken(tokens *oauth.TokenStore, users *identity.Directory, resource string, next http.Handler) *RequireToken {
	return &RequireToken{tokens: tokens, users: users, resource: resource, next: next}
}

func (rt *RequireToken) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		rt.challenge(w, "", "")
		return
	}

	claims, err := rt.tokens.Validate(token, rt.resource)
	if err != nil {
		var desc string
		if oauthErr, isOAuth := err.(*oauth.Error); isOAuth {
			desc = oauthErr.Description
		}
		logging.Debug("HTTP", "Rejected bearer token on %s: %v", r.URL.Path, err)
		rt.challenge(w, oauth.ErrorCodeInvalidToken, desc)
		return
	}

	id := Identity{
		UserID:   claims.UserID,
		ClientID: claims.ClientID,
		Scope:    claims.Scope,
	}
	if record, found := rt.users.Get(claims.UserID); found {
		id.Username = record.Username
		id.APIToken = record.APIToken
		id.Permissions = record.Permissions
	}

	rt.next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// challenge writes a 401 with a Bearer challenge and a JSON error body. The
// resource_metadata parameter tells MCP clients where to find the
// authorization server per the protected resource metadata document.
func (rt *RequireToken) challenge(w http.ResponseWriter, errorCode, errorDesc string) {
	value := oauth.FormatWWWAuthenticate(rt.resource, errorCode, errorDesc)
	value += `, resource_metadata="` + rt.resource + `/.well-known/oauth-protected-resource"`
	w.Header().Set("WWW-Authenticate", value)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]string{"error": oauth.ErrorCodeInvalidToken}
	if errorCode == "" {
		body["error"] = "unauthorized"
		body["error_description"] = "Authorization required. Obtain a token via the OAuth flow."
	} else if errorDesc != "" {
		body["error_description"] = errorDesc
	}
	json.NewEncoder(w).Encode(body)
}
