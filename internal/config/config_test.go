package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every REDLINE_ env var that Load() reads.
var allConfigKeys = []string{
	"REDLINE_GITHUB_TOKEN",
	"REDLINE_GITHUB_USERNAME",
	"REDLINE_BOT_USERNAMES",
	"REDLINE_LISTEN_ADDR",
	"REDLINE_DB_PATH",
}

// isolateConfigEnv saves and unsets all REDLINE_ env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REDLINE_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("REDLINE_GITHUB_USERNAME", "redline-bot")
	t.Setenv("REDLINE_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("REDLINE_DB_PATH", "/tmp/test.db")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "redline-bot", cfg.GitHubUsername)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.True(t, cfg.HasGitHubCredentials())
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REDLINE_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("REDLINE_GITHUB_USERNAME", "redline-bot")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "redline.db", cfg.DBPath)
	assert.Equal(t, []string{}, cfg.BotAliases)
}

// A missing token does not fail Load; the serve command checks
// HasGitHubCredentials and reports setup guidance itself.
func TestLoad_MissingCredentials(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GitHubToken)
	assert.False(t, cfg.HasGitHubCredentials())
}

func TestLoad_BotAliases(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REDLINE_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("REDLINE_GITHUB_USERNAME", "redline-bot")
	t.Setenv("REDLINE_BOT_USERNAMES", "redline-proxy, redline-staging[bot], ")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"redline-proxy", "redline-staging[bot]"}, cfg.BotAliases)
}
