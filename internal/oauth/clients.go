package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"remotemcp/pkg/logging"
)

// Sentinel errors for client validation; callers translate these into the
// OAuth error taxonomy.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidSecret  = errors.New("invalid client secret")
)

// dummySecretHash is a precomputed bcrypt hash compared against when the
// client does not exist, so that lookups for unknown and known clients take
// the same amount of time.
const dummySecretHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ClientMetadata is the dynamic registration request (RFC 7591).
type ClientMetadata struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	ResponseTypes           []string `json:"response_types,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
}

// TrustedClient describes the pre-seeded first-party client.
type TrustedClient struct {
	ID           string
	Name         string
	RedirectURIs []string

	// OriginPrefix relaxes redirect validation: any URI starting with this
	// prefix is accepted for the trusted client. Policy exception for the
	// first-party connector whose callback hosts rotate.
	OriginPrefix string
}

// ClientRegistry holds registered OAuth clients: the pre-seeded trusted
// client plus clients added through dynamic registration.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client

	trusted TrustedClient
}

// NewClientRegistry creates a registry pre-seeded with the trusted
// first-party client, if one is configured.
func NewClientRegistry(trusted TrustedClient) *ClientRegistry {
	cr := &ClientRegistry{
		clients: make(map[string]*Client),
		trusted: trusted,
	}

	if trusted.ID != "" {
		cr.clients[trusted.ID] = &Client{
			ClientID:                trusted.ID,
			ClientName:              trusted.Name,
			RedirectURIs:            append([]string(nil), trusted.RedirectURIs...),
			GrantTypes:              []string{"authorization_code"},
			ResponseTypes:           []string{"code"},
			Scope:                   "mcp",
			TokenEndpointAuthMethod: "none",
			Trusted:                 true,
			CreatedAt:               time.Now(),
		}
		logging.Info("OAuth", "Pre-seeded trusted client %s (%s)", trusted.ID, trusted.Name)
	}

	return cr
}

// Register validates the metadata and creates a new client with freshly
// generated credentials. It returns the client and the plaintext secret,
// which is shown to the caller exactly once; only the bcrypt hash is kept.
func (cr *ClientRegistry) Register(meta ClientMetadata) (*Client, string, error) {
	if meta.ClientName == "" || len(meta.RedirectURIs) == 0 {
		return nil, "", ErrInvalidClientMetadata("client_name and redirect_uris are required")
	}

	clientID, err := newClientID()
	if err != nil {
		return nil, "", err
	}
	secret, err := newClientSecret()
	if err != nil {
		return nil, "", err
	}
	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash client secret: %w", err)
	}

	grantTypes := meta.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = []string{"authorization_code"}
	}
	responseTypes := meta.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = []string{"code"}
	}
	scope := meta.Scope
	if scope == "" {
		scope = "mcp"
	}
	authMethod := meta.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = "client_secret_post"
	}

	client := &Client{
		ClientID:                clientID,
		ClientName:              meta.ClientName,
		RedirectURIs:            append([]string(nil), meta.RedirectURIs...),
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		Scope:                   scope,
		TokenEndpointAuthMethod: authMethod,
		SecretHash:              string(secretHash),
		CreatedAt:               time.Now(),
	}

	cr.mu.Lock()
	cr.clients[clientID] = client
	cr.mu.Unlock()

	logging.Info("OAuth", "Registered client %s (%s)", meta.ClientName, clientID)
	return client, secret, nil
}

// Get retrieves a client by ID.
func (cr *ClientRegistry) Get(clientID string) (*Client, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	client, ok := cr.clients[clientID]
	if !ok {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// Validate checks client credentials. The trusted first-party client is
// exempt from secret verification; confidential clients must present the
// secret issued at registration. A bcrypt comparison is always performed so
// response time does not reveal whether the client exists.
func (cr *ClientRegistry) Validate(clientID, clientSecret string) (*Client, error) {
	cr.mu.RLock()
	client, ok := cr.clients[clientID]
	cr.mu.RUnlock()

	hashToCompare := dummySecretHash
	if ok && client.SecretHash != "" {
		hashToCompare = client.SecretHash
	}
	bcryptErr := bcrypt.CompareHashAndPassword([]byte(hashToCompare), []byte(clientSecret))

	if !ok {
		return nil, ErrClientNotFound
	}
	if client.Trusted {
		return client, nil
	}
	if bcryptErr != nil {
		return nil, ErrInvalidSecret
	}
	return client, nil
}

// IsRedirectAllowed reports whether the redirect URI is acceptable for the
// client: exact match against the registered set, or, for the trusted
// client only, any URI under its trusted origin prefix.
func (cr *ClientRegistry) IsRedirectAllowed(clientID, redirectURI string) bool {
	cr.mu.RLock()
	client, ok := cr.clients[clientID]
	cr.mu.RUnlock()

	if !ok {
		return false
	}
	if client.Trusted && cr.trusted.OriginPrefix != "" && strings.HasPrefix(redirectURI, cr.trusted.OriginPrefix) {
		return true
	}
	for _, uri := range client.RedirectURIs {
		if uri == redirectURI {
			return true
		}
	}
	return false
}

// Delete removes a client. Deleting an unknown client is not an error.
func (cr *ClientRegistry) Delete(clientID string) bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if _, ok := cr.clients[clientID]; !ok {
		return false
	}
	delete(cr.clients, clientID)
	logging.Info("OAuth", "Deleted client %s", clientID)
	return true
}

// Count returns the number of registered clients.
func (cr *ClientRegistry) Count() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.clients)
}

func newClientID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate client ID: %w", err)
	}
	return "client_" + hex.EncodeToString(buf), nil
}

func newClientSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate client secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
