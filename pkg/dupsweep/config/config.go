package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// WorkersConfig sizes the scan pools. Zero means size from detected resources.
type WorkersConfig struct {
	Dir  int `mapstructure:"dir"`
	Hash int `mapstructure:"hash"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path"`
	MinSize     string        `mapstructure:"min_size"`
	Exclude     []string      `mapstructure:"exclude"`
	Include     []string      `mapstructure:"include"`
	Hash        string        `mapstructure:"hash"`
	Strict      bool          `mapstructure:"strict"`
	Absolute    bool          `mapstructure:"absolute"`
	Workers     WorkersConfig `mapstructure:"workers"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// EnvPrefix prefixes environment overrides, e.g. DUPSWEEP_MIN_SIZE.
const EnvPrefix = "DUPSWEEP"

// SetDefaults registers every configuration default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("include", []string{})
	v.SetDefault("hash", DefaultHash)
	v.SetDefault("strict", false)
	v.SetDefault("absolute", false)
	v.SetDefault("workers.dir", 0)
	v.SetDefault("workers.hash", 0)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // empty means $XDG_STATE_HOME/dupsweep/dupsweep.log
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"dedupe":  "info",
		"resolve": "info",
		"trash":   "info",
	})
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/dupsweep/config.yaml
//   - $HOME/.config/dupsweep/config.yaml
//
// Environment variables are prefixed with DUPSWEEP_ (e.g., DUPSWEEP_MIN_SIZE).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "dupsweep"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "dupsweep"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DefaultPath, err = ExpandPath(cfg.DefaultPath); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "dupsweep"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "dupsweep"), nil
}

// ConfigFile returns the path of the default config file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// defaultConfigTemplate is written by WriteDefault.
const defaultConfigTemplate = `# dupsweep configuration

# Directory to scan when none is given on the command line
default_path: %s

# Skip files smaller than this (e.g. 1KiB, 10M); 0 keeps empty files
min_size: "%s"

# Paths or glob patterns to exclude from scanning
exclude:
%s
# Only hash files matching these glob patterns (empty means every file)
include: []

# Content digest: md5, sha256, xxhash, blake3
hash: %s

# Abort on the first unreadable directory or file
strict: false

# Report absolute paths instead of paths relative to the scan root
absolute: false

# Worker pools (0 sizes them from detected CPU and memory)
workers:
  dir: 0
  hash: 0

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/dupsweep/dupsweep.log)
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30       # days
    max_backups: 5
    daily: true
  # Per-component log levels
  components:
    scanner: info
    dedupe: info
    resolve: info
    trash: info
`

// WriteDefault writes a default config file if none exists and returns its path.
func WriteDefault() (string, error) {
	configPath, err := ConfigFile()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	var exclude strings.Builder
	for _, e := range DefaultExclusions {
		fmt.Fprintf(&exclude, "  - %s\n", e)
	}

	content := fmt.Sprintf(defaultConfigTemplate,
		DefaultPath, DefaultMinSize, exclude.String(), DefaultHash, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/dupsweep/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "dupsweep")
}
