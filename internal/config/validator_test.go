package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name:   "nrf52",
			modify: func(c *Config) { c.Project.Platform = PlatformNRF52 },
		},
		{
			name:   "other platform",
			modify: func(c *Config) { c.Project.Platform = "raspberrypi" },
		},
		{
			name:    "progname path",
			modify:  func(c *Config) { c.Project.ProgName = "out/firmware" },
			wantErr: true,
			errMsg:  "project.progname",
		},
		{
			name:    "zero family",
			modify:  func(c *Config) { c.UF2.FamilyID = 0 },
			wantErr: true,
			errMsg:  "family ID cannot be zero",
		},
		{
			name:    "bad resolution",
			modify:  func(c *Config) { c.Logo.DefaultWidth = -1 },
			wantErr: true,
			errMsg:  "invalid default resolution",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
			errMsg:  "invalid log format",
		},
		{
			name:    "multiple errors",
			modify:  func(c *Config) { c.Logging.Format = "xml"; c.UF2.FamilyID = 0 },
			wantErr: true,
			errMsg:  "; ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.errMsg)
			}
			if tt.wantErr {
				var verrs ValidationErrors
				if !errors.As(err, &verrs) {
					t.Errorf("Validate() error type = %T", err)
				}
			}
		})
	}
}

func TestValidateRenamePattern(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{"{progname}-{env}-{version}.bin", false},
		{"kode-{version}.bin", false},
		{"", true},
		{"firmware.bin", true},
		{"{progname}-{sha}.bin", true},
		{"{version.bin", true},
		{"out/{version}.bin", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := validateRenamePattern(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRenamePattern(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorsEmpty(t *testing.T) {
	if (ValidationErrors{}).Error() != "" {
		t.Error("empty ValidationErrors should render empty")
	}
}
