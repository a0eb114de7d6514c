// Package config provides configuration management for kodebuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the configuration. When path is empty, kodebuild.yaml in
// projectDir is used if it exists; a missing default file is not an error.
// Defaults are not applied: call ApplyDefaults once environment and flag
// overrides are merged, since BuildDir is derived from the final env.
func Load(path, projectDir string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(projectDir, FileName)
	}

	// Path is from the project directory or a command-line argument
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if cfg.Project.Dir == "" {
		cfg.Project.Dir = projectDir
	}
	return cfg, nil
}

// Save writes cfg as YAML
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeWithEnvironment applies the variables PlatformIO exports to build
// scripts, plus kodebuild's own overrides.
func MergeWithEnvironment(cfg *Config) {
	if v := os.Getenv("PROJECT_DIR"); v != "" {
		cfg.Project.Dir = v
	}
	if v := os.Getenv("BUILD_DIR"); v != "" {
		cfg.Project.BuildDir = v
	}
	if v := os.Getenv("PIOENV"); v != "" {
		cfg.Project.Env = v
	}
	if v := os.Getenv("PROGNAME"); v != "" {
		cfg.Project.ProgName = v
	}
	if v := os.Getenv("PIOPLATFORM"); v != "" {
		cfg.Project.Platform = v
	}
	if v := os.Getenv("KODEBUILD_ESP32_KIND"); v != "" {
		cfg.Project.ESP32Kind = v
	}
	if v := os.Getenv("KODEBUILD_UF2_HELPER"); v != "" {
		cfg.UF2.Helper = v
	}
	if v := os.Getenv("KODEBUILD_UF2_FAMILY"); v != "" {
		if id, err := ParseUint32(v); err == nil {
			cfg.UF2.FamilyID = id
		}
	}
	if v := os.Getenv("KODEBUILD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KODEBUILD_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

// GetDefaultConfig returns a configuration with every default applied
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills empty fields with default values
func ApplyDefaults(cfg *Config) {
	if cfg.Project.Dir == "" {
		cfg.Project.Dir = "."
	}
	if cfg.Project.BuildDir == "" && cfg.Project.Env != "" {
		cfg.Project.BuildDir = filepath.Join(cfg.Project.Dir, ".pio", "build", cfg.Project.Env)
	}
	if cfg.Project.ProgName == "" {
		cfg.Project.ProgName = DefaultProgName
	}

	if cfg.Paths.VersionFile == "" {
		cfg.Paths.VersionFile = DefaultVersionFile
	}
	if cfg.Paths.PrefsFile == "" {
		cfg.Paths.PrefsFile = DefaultPrefsFile
	}
	if cfg.Paths.BrandingDir == "" {
		cfg.Paths.BrandingDir = DefaultBrandingDir
	}
	if cfg.Paths.BootDir == "" {
		cfg.Paths.BootDir = DefaultBootDir
	}

	if cfg.ESP32.AppOffset == 0 {
		cfg.ESP32.AppOffset = DefaultAppOffset
	}
	if cfg.ESP32.RenamePattern == "" {
		cfg.ESP32.RenamePattern = DefaultRenamePattern
	}

	if cfg.UF2.FamilyID == 0 {
		cfg.UF2.FamilyID = DefaultUF2FamilyID
	}
	if cfg.UF2.BaseAddress == 0 {
		cfg.UF2.BaseAddress = DefaultUF2Base
	}

	if cfg.Logo.DefaultWidth == 0 {
		cfg.Logo.DefaultWidth = DefaultLogoWidth
	}
	if cfg.Logo.DefaultHeight == 0 {
		cfg.Logo.DefaultHeight = DefaultLogoHeight
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// ProjectPath resolves a project-relative path
func (c *Config) ProjectPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Project.Dir, rel)
}

// ParseUint32 accepts decimal or 0x-prefixed hexadecimal
func ParseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid 32-bit value %q: %w", s, err)
	}
	return uint32(v), nil
}
