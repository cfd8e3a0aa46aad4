package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"remotemcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the given YAML file path. Defaults are
// applied first, then the file, then environment overrides. A missing file
// is not an error; a malformed file is.
func LoadConfig(configPath string) (Config, error) {
	cfg := GetDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logging.Info("Config", "No config file at %s, using defaults", configPath)
			} else {
				return Config{}, fmt.Errorf("error reading config from %s: %w", configPath, err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("error parsing config from %s: %w", configPath, err)
			}
			logging.Info("Config", "Loaded configuration from %s", configPath)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides lets secrets live outside the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REMOTEMCP_API_KEY"); v != "" {
		cfg.Identity.APIKey = v
	}
	if v := os.Getenv("REMOTEMCP_JWT_SECRET"); v != "" {
		cfg.Identity.JWTSecret = v
	}
	if v := os.Getenv("REMOTEMCP_PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.PublicURL == "" {
		return fmt.Errorf("server.publicUrl is required")
	}
	u, err := url.Parse(c.Server.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.publicUrl is not a valid URL: %q", c.Server.PublicURL)
	}
	// The public URL doubles as the token audience; a trailing slash would
	// make resource parameter comparison fail for well-behaved clients.
	c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")

	if c.OAuth.TrustedClient.ID != "" && len(c.OAuth.TrustedClient.RedirectURIs) == 0 {
		return fmt.Errorf("oauth.trustedClient.redirectUris must not be empty when a trusted client is configured")
	}
	if c.Identity.Timeout <= 0 {
		c.Identity.Timeout = DefaultExternalTimeout
	}
	if c.Tools.Timeout <= 0 {
		c.Tools.Timeout = DefaultExternalTimeout
	}
	if c.OAuth.SessionRememberTTL <= 0 {
		c.OAuth.SessionRememberTTL = DefaultSessionRememberTTL
	}
	return nil
}
