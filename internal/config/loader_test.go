package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultPublicURL, cfg.Server.PublicURL)
	assert.Equal(t, "claude", cfg.OAuth.TrustedClient.ID)
	assert.NotEmpty(t, cfg.OAuth.TrustedClient.RedirectURIs)
	assert.Equal(t, DefaultVerifyURL, cfg.Identity.VerifyURL)
	assert.False(t, cfg.Identity.TestMode)
	assert.Equal(t, DefaultExternalTimeout, cfg.Identity.Timeout)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8443
  publicUrl: https://mcp.example.com/
identity:
  testMode: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8443, cfg.Server.Port)
	// Trailing slash is normalized away for audience comparison.
	assert.Equal(t, "https://mcp.example.com", cfg.Server.PublicURL)
	assert.True(t, cfg.Identity.TestMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, DefaultHost, cfg.Server.Host)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REMOTEMCP_API_KEY", "env-key")
	t.Setenv("REMOTEMCP_PUBLIC_URL", "https://override.example.com")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Identity.APIKey)
	assert.Equal(t, "https://override.example.com", cfg.Server.PublicURL)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty public URL", func(c *Config) { c.Server.PublicURL = "" }, true},
		{"relative public URL", func(c *Config) { c.Server.PublicURL = "not-a-url" }, true},
		{"trusted client without redirects", func(c *Config) {
			c.OAuth.TrustedClient.RedirectURIs = nil
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_TimeoutFallbacks(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Identity.Timeout = 0
	cfg.Tools.Timeout = -1
	cfg.OAuth.SessionRememberTTL = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultExternalTimeout, cfg.Identity.Timeout)
	assert.Equal(t, DefaultExternalTimeout, cfg.Tools.Timeout)
	assert.Equal(t, DefaultSessionRememberTTL, cfg.OAuth.SessionRememberTTL)
}
