package config

// ProjectConfig describes the PlatformIO project being built
type ProjectConfig struct {
	Dir       string `yaml:"dir" json:"dir"`               // Project root (PROJECT_DIR)
	BuildDir  string `yaml:"build_dir" json:"build_dir"`   // Environment build directory (BUILD_DIR)
	Env       string `yaml:"env" json:"env"`               // PlatformIO environment name (PIOENV)
	ProgName  string `yaml:"progname" json:"progname"`     // Firmware base name (PROGNAME)
	Platform  string `yaml:"platform" json:"platform"`     // espressif32 or nordicnrf52
	ESP32Kind string `yaml:"esp32_kind" json:"esp32_kind"` // custom_esp32_kind project option
}

// PathsConfig holds project-relative input and output locations
type PathsConfig struct {
	VersionFile string `yaml:"version_file" json:"version_file"`
	PrefsFile   string `yaml:"prefs_file" json:"prefs_file"`
	BrandingDir string `yaml:"branding_dir" json:"branding_dir"`
	BootDir     string `yaml:"boot_dir" json:"boot_dir"`
}

// ESP32Config controls post-processing of ESP32 application binaries
type ESP32Config struct {
	AppOffset     uint32 `yaml:"app_offset" json:"app_offset"`         // Flash offset the app is uploaded to
	RenamePattern string `yaml:"rename_pattern" json:"rename_pattern"` // Copy name; {progname} {env} {version}
}

// UF2Config controls nRF52 UF2 generation
type UF2Config struct {
	FamilyID    uint32 `yaml:"family_id" json:"family_id"`
	BaseAddress uint32 `yaml:"base_address" json:"base_address"` // Placement of raw .bin input
	Helper      string `yaml:"helper" json:"helper"`             // External converter; native when empty
}

// LogoConfig controls the boot-logo step
type LogoConfig struct {
	DefaultWidth  int  `yaml:"default_width" json:"default_width"`
	DefaultHeight int  `yaml:"default_height" json:"default_height"`
	Fit           bool `yaml:"fit" json:"fit"` // Scale the closest branding asset when the exact size is missing
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
	File   string `yaml:"file" json:"file"`     // Optional log file
	Color  bool   `yaml:"color" json:"color"`
}

// Config is the complete kodebuild configuration
type Config struct {
	Project ProjectConfig `yaml:"project" json:"project"`
	Paths   PathsConfig   `yaml:"paths" json:"paths"`
	ESP32   ESP32Config   `yaml:"esp32" json:"esp32"`
	UF2     UF2Config     `yaml:"uf2" json:"uf2"`
	Logo    LogoConfig    `yaml:"logo" json:"logo"`
	Logging LogConfig     `yaml:"logging" json:"logging"`
}

// Supported platforms
const (
	PlatformESP32 = "espressif32"
	PlatformNRF52 = "nordicnrf52"
)

// Default configuration values
const (
	FileName             = "kodebuild.yaml"
	DefaultProgName      = "firmware"
	DefaultVersionFile   = "version.properties"
	DefaultPrefsFile     = "userPrefs.jsonc"
	DefaultBrandingDir   = "branding"
	DefaultBootDir       = "data/boot"
	DefaultAppOffset     = 0x400000
	DefaultRenamePattern = "{progname}-{env}-{version}.bin"
	DefaultUF2FamilyID   = 0xADA52840
	DefaultUF2Base       = 0x2000
	DefaultLogoWidth     = 240
	DefaultLogoHeight    = 240
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)
