package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultRotationMaxSize applies when logging.rotation.max_size is empty or invalid.
const defaultRotationMaxSize = 10 * types.MiB

// initializeLogging runs before every command. It opens the rotating log
// file described by the logging.* settings. With --verbose, log records are
// mirrored to stderr. A log file that cannot be opened only disables file
// logging; an invalid level is still an error.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(config.StateDir(), 0o755); err != nil {
		printVerbose("Cannot create state directory: %v", err)
	}

	path, err := config.ExpandPath(viper.GetString("logging.path"))
	if err != nil {
		return err
	}

	rotation := config.RotationConfig{
		MaxSize:    viper.GetString("logging.rotation.max_size"),
		MaxAge:     viper.GetInt("logging.rotation.max_age"),
		MaxBackups: viper.GetInt("logging.rotation.max_backups"),
		Daily:      viper.GetBool("logging.rotation.daily"),
	}

	cfg := logging.Config{
		Level:      viper.GetString("logging.level"),
		Path:       path,
		Rotation:   parseRotationConfig(rotation),
		Components: viper.GetStringMapString("logging.components"),
	}
	if getVerbose() && !getQuiet() {
		cfg.ConsoleLevel = "debug"
	}

	err = logging.Init(cfg)
	if err == nil {
		return nil
	}
	if errors.Is(err, logging.ErrInvalidLevel) {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	printNotice("Log file disabled: %v", err)
	cfg.Discard = true
	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the configured rotation settings, parsing
// the human-readable max size.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := defaultRotationMaxSize
	if rc.MaxSize != "" {
		if parsed, err := types.ParseSize(rc.MaxSize); err == nil && parsed > 0 {
			maxSize = parsed
		}
	}

	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
