package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

var renamePlaceholders = map[string]bool{
	"{progname}": true,
	"{env}":      true,
	"{version}":  true,
}

// Validate checks the configuration. Project.Platform is not checked:
// platforms without a post-build step are a no-op there.
func Validate(cfg *Config) error {
	var errors ValidationErrors

	if strings.ContainsAny(cfg.Project.ProgName, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "project.progname",
			Message: "must be a file name, not a path",
		})
	}

	if err := validateRenamePattern(cfg.ESP32.RenamePattern); err != nil {
		errors = append(errors, ValidationError{
			Field:   "esp32.rename_pattern",
			Message: err.Error(),
		})
	}

	if cfg.UF2.FamilyID == 0 {
		errors = append(errors, ValidationError{
			Field:   "uf2.family_id",
			Message: "family ID cannot be zero",
		})
	}

	if cfg.Logo.DefaultWidth <= 0 || cfg.Logo.DefaultHeight <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logo",
			Message: fmt.Sprintf("invalid default resolution %dx%d", cfg.Logo.DefaultWidth, cfg.Logo.DefaultHeight),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s", cfg.Logging.Level),
		})
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s", cfg.Logging.Format),
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// validateRenamePattern checks placeholders in the ESP32 copy name
func validateRenamePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if strings.ContainsAny(pattern, `/\`) {
		return fmt.Errorf("pattern must be a file name")
	}

	start := 0
	for {
		idx := strings.Index(pattern[start:], "{")
		if idx == -1 {
			break
		}
		idx += start

		end := strings.Index(pattern[idx+1:], "}")
		if end == -1 {
			return fmt.Errorf("unclosed placeholder at position %d", idx)
		}
		end += idx + 2

		placeholder := pattern[idx:end]
		if !renamePlaceholders[placeholder] {
			return fmt.Errorf("unknown placeholder %s", placeholder)
		}
		start = end
	}

	if !strings.Contains(pattern, "{version}") {
		return fmt.Errorf("pattern must contain {version}")
	}
	return nil
}
