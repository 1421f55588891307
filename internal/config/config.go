// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strings"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken    string
	GitHubUsername string
	BotAliases     []string
	ListenAddr     string
	DBPath         string
}

// HasGitHubCredentials returns true when both GitHubToken and GitHubUsername
// are non-empty. Used by the composition root to decide whether the serve
// command can talk to the API or must fail fast with setup guidance.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != "" && c.GitHubUsername != ""
}

// Load reads configuration from environment variables and returns a Config.
// Required for reviewing: REDLINE_GITHUB_TOKEN and REDLINE_GITHUB_USERNAME
// (the login writes are issued under). Optional: REDLINE_BOT_USERNAMES, a
// comma-separated list of additional account names recognized as this
// reviewer; REDLINE_LISTEN_ADDR (127.0.0.1:8080); REDLINE_DB_PATH
// (redline.db) for the decision journal.
func Load() (*Config, error) {
	token := os.Getenv("REDLINE_GITHUB_TOKEN")
	username := os.Getenv("REDLINE_GITHUB_USERNAME")

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("REDLINE_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "redline.db"
	if v, ok := os.LookupEnv("REDLINE_DB_PATH"); ok {
		dbPath = v
	}

	var aliases []string
	if v, ok := os.LookupEnv("REDLINE_BOT_USERNAMES"); ok && v != "" {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				aliases = append(aliases, name)
			}
		}
	}
	if aliases == nil {
		aliases = []string{}
	}

	return &Config{
		GitHubToken:    token,
		GitHubUsername: username,
		BotAliases:     aliases,
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
	}, nil
}
