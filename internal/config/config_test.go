package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "https://salambumi.xyz", cfg.Site.BaseURL)
	require.Equal(t, "properties", cfg.Supabase.PropertiesTable)
	require.Equal(t, "lead_captures", cfg.Supabase.LeadsTable)
	require.Equal(t, 100, cfg.RateLimit.Default.MaxRequests)
	require.Equal(t, 30, cfg.RateLimit.API.MaxRequests)
	require.Equal(t, 10, cfg.RateLimit.Upload.MaxRequests)
	require.Equal(t, 60000, cfg.RateLimit.Default.WindowMs)
	require.Contains(t, cfg.CORS.AllowedOrigins, "https://salambumi.xyz")
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edge.yaml")
	content := []byte(`
server:
  port: 9090
site:
  base_url: https://staging.example.com
ratelimit:
  api:
    window_ms: 30000
    max_requests: 5
logging:
  development: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "https://staging.example.com", cfg.Site.BaseURL)
	require.Equal(t, 5, cfg.RateLimit.API.MaxRequests)
	require.Equal(t, 30000, cfg.RateLimit.API.WindowMs)
	require.True(t, cfg.Logging.Development)
	// Untouched sections keep their defaults.
	require.Equal(t, 100, cfg.RateLimit.Default.MaxRequests)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := cfg
	bad.Server.Port = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Site.BaseURL = ""
	require.Error(t, bad.Validate())

	bad = cfg
	bad.RateLimit.API.MaxRequests = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.RateLimit.Upload.WindowMs = -1
	require.Error(t, bad.Validate())
}
