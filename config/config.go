package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the tool configuration. Every field has a working default, so a
// missing config file is not an error.
type Config struct {
	Region          string `yaml:"region"`
	QuarantineGroup string `yaml:"quarantine_group"`
	ReportDir       string `yaml:"report_dir,omitempty"`
	DataDir         string `yaml:"data_dir,omitempty"`
}

// Quarantine group defaults match the fixed name the isolation workflow
// looks up, one group per VPC.
const (
	DefaultQuarantineGroup            = "ec2-quarantine-sg"
	DefaultQuarantineGroupDescription = "Quarantine Security Group for Incident Response - Blocks all traffic"
	DefaultRegion                     = "us-east-1"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Region:          DefaultRegion,
		QuarantineGroup: DefaultQuarantineGroup,
		DataDir:         defaultDataDir(),
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".custody.yaml"
	}
	return filepath.Join(home, ".custody.yaml")
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate ensures required fields are set.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.QuarantineGroup == "" {
		return fmt.Errorf("quarantine_group is required")
	}
	return nil
}

// RecoveryStorePath returns the path of the recovery record database.
func (c *Config) RecoveryStorePath() string {
	return filepath.Join(c.dataDir(), "recovery.db")
}

// AuditLogDir returns the directory audit logs are written to.
func (c *Config) AuditLogDir() string {
	return filepath.Join(c.dataDir(), "audit")
}

func (c *Config) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return defaultDataDir()
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".custody"
	}
	return filepath.Join(home, ".custody")
}
