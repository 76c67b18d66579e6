package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresBaseURL(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "http://localhost:9090/api")
	t.Setenv("STOREFRONT_REQUEST_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090/api", cfg.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.NotEmpty(t, cfg.StatePath)
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_base_url: http://file.example/api\nrequest_timeout: 7s\ncache_ttl: 90s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example/api", cfg.APIBaseURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)

	// env wins over the file
	t.Setenv("STOREFRONT_API_BASE_URL", "http://env.example/api")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api", cfg.APIBaseURL)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadStubDefaults(t *testing.T) {
	cfg := LoadStub()
	assert.Equal(t, 8080, cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)

	t.Setenv("STUB_API_PORT", "9191")
	t.Setenv("STUB_API_JWT_SECRET", "s3cret")
	cfg = LoadStub()
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}
