package config

import "time"

// Config is the top-level configuration structure for remotemcp.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Identity IdentityConfig `yaml:"identity"`
	Tools    ToolsConfig    `yaml:"tools"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig defines the HTTP listener and the server's public identity.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: 0.0.0.0)
	Port int    `yaml:"port,omitempty"` // Port to listen on (default: 3000)

	// PublicURL is the canonical URL of this server. It is used as the
	// OAuth issuer, as the audience every access token is bound to, and as
	// the only accepted value of the resource parameter.
	PublicURL string `yaml:"publicUrl,omitempty"`

	// AllowedOrigins lists origins allowed to make cross-origin requests.
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// OAuthConfig configures the authorization server core.
type OAuthConfig struct {
	// TrustedClient is the pre-seeded first-party client. It is exempt
	// from client-secret verification, and its redirect URIs may be any
	// HTTPS URL under TrustedOriginPrefix.
	TrustedClient TrustedClientConfig `yaml:"trustedClient,omitempty"`

	// SessionRememberTTL is the session lifetime when the user checks
	// "remember me" at login (default: 720h).
	SessionRememberTTL time.Duration `yaml:"sessionRememberTTL,omitempty"`
}

// TrustedClientConfig describes the pre-seeded first-party client.
type TrustedClientConfig struct {
	ID                  string   `yaml:"id,omitempty"`
	Name                string   `yaml:"name,omitempty"`
	RedirectURIs        []string `yaml:"redirectUris,omitempty"`
	TrustedOriginPrefix string   `yaml:"trustedOriginPrefix,omitempty"`
}

// IdentityConfig configures the external credential verification service.
type IdentityConfig struct {
	// VerifyURL is the endpoint that verifies username/password pairs.
	VerifyURL string `yaml:"verifyUrl,omitempty"`

	// APIKey authenticates this server to the verification endpoint.
	APIKey string `yaml:"apiKey,omitempty"`

	// JWTSecret, when set, is used to verify the HS256 api_token returned
	// by the legacy identity bridge and extract its permission claims.
	JWTSecret string `yaml:"jwtSecret,omitempty"`

	// Timeout bounds each verification call (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// TestMode enables the static test credential pair and the
	// unauthenticated /mcp-test endpoint. Never enable in production.
	TestMode bool `yaml:"testMode,omitempty"`
}

// ToolsConfig configures the downstream tool API.
type ToolsConfig struct {
	// APIBaseURL is the base URL of the internal profile API.
	APIBaseURL string `yaml:"apiBaseUrl,omitempty"`

	// Timeout bounds each downstream call (default: 30s).
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error (default: info)
}
