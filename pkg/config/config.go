package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultShell          = "/bin/bash"
	defaultKubectl        = "kubectl"
	defaultRequestTimeout = 30 * time.Second
)

// AppConfig holds user defaults for anypod. Command-line flags take precedence.
type AppConfig struct {
	Exec    ExecConfig    `yaml:"exec"`
	Cluster ClusterConfig `yaml:"cluster"`
}

// ExecConfig controls how --exec opens a shell.
type ExecConfig struct {
	Shell   string `yaml:"shell"`
	Kubectl string `yaml:"kubectl"`
}

// ClusterConfig holds API client settings.
type ClusterConfig struct {
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Exec: ExecConfig{
			Shell:   defaultShell,
			Kubectl: defaultKubectl,
		},
		Cluster: ClusterConfig{
			RequestTimeout: defaultRequestTimeout,
		},
	}
}

// DefaultPath returns ~/.config/anypod/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "anypod", "config.yaml"), nil
}

// LoadConfig loads from DefaultPath. Without a home directory the defaults are used.
func LoadConfig() (*AppConfig, error) {
	path, err := DefaultPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads config from a specific file path.
// Returns defaults if the file does not exist.
func LoadConfigFrom(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply defaults for zero values
	if cfg.Exec.Shell == "" {
		cfg.Exec.Shell = defaultShell
	}
	if cfg.Exec.Kubectl == "" {
		cfg.Exec.Kubectl = defaultKubectl
	}
	if cfg.Cluster.RequestTimeout <= 0 {
		cfg.Cluster.RequestTimeout = defaultRequestTimeout
	}

	return cfg, nil
}
