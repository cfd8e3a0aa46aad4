package config

import "time"

// Default values applied by GetDefaultConfig and during validation.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 3000
	DefaultPublicURL       = "https://mcp.academiadepolitie.com:8443"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultVerifyURL = "https://www.academiadepolitie.com/api/internal/verify_login.php"
	DefaultAPIBase   = "https://www.academiadepolitie.com/api/internal"

	DefaultExternalTimeout = 30 * time.Second

	DefaultSessionRememberTTL = 30 * 24 * time.Hour
)

// GetDefaultConfig returns the default configuration for remotemcp.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			PublicURL:       DefaultPublicURL,
			AllowedOrigins:  []string{"https://claude.ai"},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		OAuth: OAuthConfig{
			TrustedClient: TrustedClientConfig{
				ID:   "claude",
				Name: "Claude",
				RedirectURIs: []string{
					"https://claude.ai/api/mcp/auth_callback",
					"https://claude.com/api/mcp/auth_callback",
					"https://claude.anthropic.com/api/mcp/auth_callback",
				},
				TrustedOriginPrefix: "https://claude.",
			},
			SessionRememberTTL: DefaultSessionRememberTTL,
		},
		Identity: IdentityConfig{
			VerifyURL: DefaultVerifyURL,
			Timeout:   DefaultExternalTimeout,
		},
		Tools: ToolsConfig{
			APIBaseURL: DefaultAPIBase,
			Timeout:    DefaultExternalTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
