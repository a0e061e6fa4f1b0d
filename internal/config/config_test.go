package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/restfinder/internal/engine/api"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"API_URL", "PER_PAGE", "TIMEOUT", "FINGERPRINT", "PROXY",
		"HISTORY_PATH", "ARCHIVE_PATH", "LOG_PATH", "DEBUG",
	} {
		t.Setenv("RESTFINDER_"+k, "")
		os.Unsetenv("RESTFINDER_" + k)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, api.DefaultBaseURL, cfg.APIURL)
	assert.Equal(t, api.DefaultPerPage, cfg.PerPage)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, api.FingerprintNone, cfg.Fingerprint)
	assert.Equal(t, "history.json", filepath.Base(cfg.HistoryPath))
	assert.Equal(t, "restfinder.log", filepath.Base(cfg.LogPath))
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.Debug)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url = "https://restfinder.example.com/api"
per_page = 50
timeout = "5s"
fingerprint = "chrome"
archive_path = "/tmp/archive.db"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://restfinder.example.com/api", cfg.APIURL)
	assert.Equal(t, 50, cfg.PerPage)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration)
	assert.Equal(t, api.FingerprintChrome, cfg.Fingerprint)
	assert.True(t, cfg.ArchiveEnabled())
	// Untouched keys keep their defaults.
	assert.Equal(t, "history.json", filepath.Base(cfg.HistoryPath))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("per_page = 50\ndebug = false\n"), 0644))

	t.Setenv("RESTFINDER_PER_PAGE", "10")
	t.Setenv("RESTFINDER_DEBUG", "true")
	t.Setenv("RESTFINDER_TIMEOUT", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.PerPage)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Minute, cfg.Timeout.Duration)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("per_page = [1"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.toml")
	require.NoError(t, os.WriteFile(neg, []byte("per_page = -1"), 0644))
	_, err = Load(neg)
	assert.ErrorContains(t, err, "per_page")

	fp := filepath.Join(dir, "fp.toml")
	require.NoError(t, os.WriteFile(fp, []byte(`fingerprint = "firefox"`), 0644))
	_, err = Load(fp)
	assert.ErrorContains(t, err, "fingerprint")
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	cfg, err := Default()
	require.NoError(t, err)
	cfg.PerPage = 30
	cfg.Proxy = "socks5://127.0.0.1:9050"

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
