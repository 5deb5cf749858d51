package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the root configuration for ttr, stored in ~/.ttr/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	GitLab  GitLabConfig  `json:"gitlab"`
	Toggl   TogglConfig   `json:"toggl"`
	Compare CompareConfig `json:"compare"`
}

// GitLabConfig holds the activity-feed connection settings.
type GitLabConfig struct {
	// URL is the GitLab instance, e.g. "https://gitlab.example.com".
	URL string `json:"url"`
	// Token is a personal access token with read_api scope. When empty the
	// OAuth device flow with ClientID is used instead.
	Token string `json:"token"`
	// ClientID is the application ID of a GitLab OAuth app with device
	// authorization enabled.
	ClientID string `json:"client_id"`
	// EventType restricts fetched events to actions containing this text.
	EventType string `json:"event_type"`
}

// TogglConfig holds the time-ledger connection settings.
type TogglConfig struct {
	APIToken         string `json:"api_token"`
	WorkspaceID      int64  `json:"workspace_id"`
	DefaultProjectID int64  `json:"default_project_id"`
}

// CompareConfig holds reconciliation defaults.
type CompareConfig struct {
	// Unnumbered is "missing" or "skip".
	Unnumbered string `json:"unnumbered"`
	// Format is the default report format: table, json, yaml or html.
	// Empty picks table on a terminal and json otherwise.
	Format string `json:"format"`
}

const (
	// DefaultGitLabURL is used when no instance is configured.
	DefaultGitLabURL = "https://gitlab.com"
	// DefaultUnnumbered routes feed events without a task id to missing.
	DefaultUnnumbered = "missing"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		GitLab:  GitLabConfig{URL: DefaultGitLabURL},
		Compare: CompareConfig{Unnumbered: DefaultUnnumbered},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// ttr configuration – ~/.ttr/config.json
//
// Secrets may also come from the environment: GITLAB_TOKEN, GITLAB_URL,
// TOGGL_API_TOKEN, TOGGL_WORKSPACE_ID (or the TTR_ prefixed forms, e.g.
// TTR_GITLAB_TOKEN). Environment values win over this file.
{
  // ── GitLab activity feed ─────────────────────────────────────────────────
  "gitlab": {
    // GitLab instance URL.
    "url": "https://gitlab.com",

    // Personal access token with the read_api scope.
    "token": "",

    // Alternative to a token: the application ID of an OAuth app with the
    // device authorization grant enabled. ttr asks you to sign in once and
    // keeps the token in ~/.ttr/auth/gitlab_tokens.json.
    "client_id": "",

    // Only fetch events whose action contains this text, e.g. "pushed".
    "event_type": ""
  },

  // ── Toggl time ledger ────────────────────────────────────────────────────
  "toggl": {
    "api_token": "",
    "workspace_id": 0,

    // Project used on import when an entry's project name is unknown.
    "default_project_id": 0
  },

  // ── Reconciliation ───────────────────────────────────────────────────────
  "compare": {
    // Where activity without a #task reference goes:
    // • "missing" – reported as missing time (default)
    // • "skip"    – left out and only counted
    "unnumbered": "missing",

    // Report format: "table", "json", "yaml" or "html".
    // Empty: table on a terminal, JSON when piped.
    "format": ""
  }
}
`

// FilePath returns the path to config.json inside base.
func FilePath(base string) string {
	return filepath.Join(base, "config.json")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads base/config.json, creating it with annotated defaults on first
// run, then applies environment overrides. Lines starting with // are treated
// as comments and stripped before JSON parsing.
func Load(base string) (Config, error) {
	cfg, err := loadFile(FilePath(base))
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg, envViper())
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.GitLab.URL == "" {
		cfg.GitLab.URL = DefaultGitLabURL
	}
	if cfg.Compare.Unnumbered == "" {
		cfg.Compare.Unnumbered = DefaultUnnumbered
	}

	return cfg, nil
}

// envViper binds every overridable key to its TTR_ variable and, where one
// exists, the variable name the standalone scripts used.
func envViper() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv("gitlab.url", "TTR_GITLAB_URL", "GITLAB_URL")
	_ = v.BindEnv("gitlab.token", "TTR_GITLAB_TOKEN", "GITLAB_TOKEN")
	_ = v.BindEnv("gitlab.client_id", "TTR_GITLAB_CLIENT_ID")
	_ = v.BindEnv("toggl.api_token", "TTR_TOGGL_API_TOKEN", "TOGGL_API_TOKEN")
	_ = v.BindEnv("toggl.workspace_id", "TTR_TOGGL_WORKSPACE_ID", "TOGGL_WORKSPACE_ID")
	_ = v.BindEnv("toggl.default_project_id", "TTR_TOGGL_DEFAULT_PROJECT_ID")
	_ = v.BindEnv("compare.unnumbered", "TTR_COMPARE_UNNUMBERED")
	_ = v.BindEnv("compare.format", "TTR_COMPARE_FORMAT")
	return v
}

func applyEnv(cfg *Config, v *viper.Viper) {
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int64) {
		if v.IsSet(key) {
			*dst = v.GetInt64(key)
		}
	}
	setString("gitlab.url", &cfg.GitLab.URL)
	setString("gitlab.token", &cfg.GitLab.Token)
	setString("gitlab.client_id", &cfg.GitLab.ClientID)
	setString("toggl.api_token", &cfg.Toggl.APIToken)
	setInt("toggl.workspace_id", &cfg.Toggl.WorkspaceID)
	setInt("toggl.default_project_id", &cfg.Toggl.DefaultProjectID)
	setString("compare.unnumbered", &cfg.Compare.Unnumbered)
	setString("compare.format", &cfg.Compare.Format)
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
