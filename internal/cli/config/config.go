// Package config defines the gatewarden-cli configuration file.
//
// The file holds connection defaults so flags do not have to be repeated
// on every invocation. Flags and environment variables always win over
// the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "go.yaml.in/yaml/v3"
)

// CLIConfig is the configuration for gatewarden-cli.
type CLIConfig struct {
	// Server is the gatewarden-server address.
	Server string `yaml:"server"`

	// AuthUser is the identity sent as X-Auth-User.
	AuthUser string `yaml:"auth_user"`

	// AdminToken authorizes directory administration commands.
	AdminToken string `yaml:"admin_token,omitempty"`

	// CAFile is an optional CA bundle for TLS servers.
	CAFile string `yaml:"ca_file,omitempty"`

	// Output is the default output format: table, json, yaml.
	Output string `yaml:"output"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "http://localhost:5080",
		Output: "table",
	}
}

// DefaultPath returns the default CLI config file path.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".gatewarden", "cli.yaml")
}

// Load reads the configuration file. A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration file. The file may hold the admin token,
// so it is created private to the user.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
