package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Client is a registered OAuth client. Clients are immutable after
// registration except for deletion.
type Client struct {
	ClientID     string   `json:"client_id"`
	ClientName   string   `json:"client_name"`
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types"`

	ResponseTypes           []string `json:"response_types"`
	Scope                   string   `json:"scope"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`

	// SecretHash is the bcrypt hash of the client secret. Empty for the
	// trusted first-party client, which authenticates by identity alone.
	SecretHash string `json:"-"`

	// Trusted marks the pre-seeded first-party client. Trusted clients
	// skip secret verification and may redirect to any HTTPS URL under
	// their trusted origin prefix.
	Trusted bool `json:"-"`

	CreatedAt time.Time `json:"-"`
}

// AuthorizationCode is a short-lived, single-use credential binding a user,
// a client, a redirect URI, and a PKCE challenge.
type AuthorizationCode struct {
	Code        string
	UserID      string
	ClientID    string
	RedirectURI string

	// CodeChallenge is the S256 challenge recorded at issuance. When empty,
	// PKCE verification is skipped at redemption.
	CodeChallenge string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccessToken is an opaque bearer token bound to a user, a client, and the
// audience (resource URL) it was minted for.
type AccessToken struct {
	Token    string
	UserID   string
	ClientID string

	// Audience is the exact protected-resource URL the token is scoped to.
	// Validation rejects any token presented for a different resource.
	Audience string

	Scope string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Claims is the authenticated result of a successful token validation.
type Claims struct {
	UserID   string
	ClientID string
	Audience string
	Scope    string
}

// TokenResponse is the JSON envelope returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Audience    string `json:"audience"`
}

// newRawToken returns prefix + hex(32 random bytes): a 256-bit unguessable
// token in the shape the wire format has always used.
func newRawToken(prefix string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}
