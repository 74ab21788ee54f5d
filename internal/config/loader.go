package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/clockwork-mcp/internal/constants"
)

// ConfigEnvVar overrides the config file location.
const ConfigEnvVar = "CLOCKWORK_MCP_CONFIG"

// Loader handles loading and saving the configuration file.
type Loader struct {
	path string
}

// NewLoader creates a loader for path. An empty path resolves, in order, to
// $CLOCKWORK_MCP_CONFIG, ~/.clockwork-mcp/config.yaml, then a temp-dir fallback
// for containers without a home directory.
func NewLoader(path string) *Loader {
	if path != "" {
		return &Loader{path: path}
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return &Loader{path: env}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = filepath.Join(os.TempDir(), "clockwork-mcp-fallback")
	}
	return &Loader{path: filepath.Join(home, constants.DefaultDir, constants.ConfigFile)}
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads the config file, falling back to defaults when it does not exist,
// and applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	//nolint:gosec // G304: path comes from the user or their home directory.
	data, err := os.ReadFile(l.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", l.path, err)
		}
	}

	if err := MergeFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to the config file.
func (l *Loader) Save(cfg *Config) error {
	//nolint:gosec // G301: directory needs standard permissions for traversal.
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
