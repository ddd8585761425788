// Package config defines the configuration schema for ait.
//
// The file is YAML with camelCase keys and lives at ~/.ait/config.yaml.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ait-tooling/ait/internal/config/agent"
	"github.com/ait-tooling/ait/internal/config/gateway"
	"github.com/ait-tooling/ait/internal/config/provider"
	"github.com/ait-tooling/ait/internal/config/storage"
)

// Config is the root configuration object.
type Config struct {
	Agents   agent.AgentsConfig      `yaml:"agents"`
	Provider provider.ProviderConfig `yaml:"provider"`
	Storage  storage.StorageConfig   `yaml:"storage"`
	Gateway  gateway.GatewayConfig   `yaml:"gateway"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agents:   agent.DefaultAgentsConfig(),
		Provider: provider.DefaultProviderConfig(),
		Storage:  storage.DefaultStorageConfig(),
		Gateway:  gateway.DefaultGatewayConfig(),
	}
}

// StoragePath returns the expanded history directory.
func (c *Config) StoragePath() string {
	return expandHome(c.Storage.Dir)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
