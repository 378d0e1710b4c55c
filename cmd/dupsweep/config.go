package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage dupsweep configuration settings.

Configuration is loaded from:
  1. --config, when given
  2. $XDG_CONFIG_HOME/dupsweep/config.yaml (if set)
  3. ~/.config/dupsweep/config.yaml

Environment variables can override config file settings using the DUPSWEEP_ prefix:
  DUPSWEEP_MIN_SIZE=1K
  DUPSWEEP_HASH=xxhash
  DUPSWEEP_WORKERS_HASH=16`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging file, environment and flags.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configEnvVars lists the overrides reported by config show.
var configEnvVars = []string{
	"DUPSWEEP_DEFAULT_PATH",
	"DUPSWEEP_MIN_SIZE",
	"DUPSWEEP_EXCLUDE",
	"DUPSWEEP_INCLUDE",
	"DUPSWEEP_HASH",
	"DUPSWEEP_STRICT",
	"DUPSWEEP_ABSOLUTE",
	"DUPSWEEP_WORKERS_DIR",
	"DUPSWEEP_WORKERS_HASH",
	"DUPSWEEP_LOGGING_LEVEL",
	"DUPSWEEP_LOGGING_PATH",
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	writeConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), &cfg)
	return nil
}

// writeConfig renders cfg in the config show layout.
func writeConfig(w io.Writer, configFile string, cfg *config.Config) {
	if configFile != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = "(default)"
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "default_path:         %s\n", cfg.DefaultPath)
	fmt.Fprintf(w, "min_size:             %s\n", cfg.MinSize)
	fmt.Fprintf(w, "exclude:              %v\n", cfg.Exclude)
	fmt.Fprintf(w, "include:              %v\n", cfg.Include)
	fmt.Fprintf(w, "hash:                 %s\n", cfg.Hash)
	fmt.Fprintf(w, "strict:               %t\n", cfg.Strict)
	fmt.Fprintf(w, "absolute:             %t\n", cfg.Absolute)
	fmt.Fprintf(w, "workers.dir:          %s\n", workerCount(cfg.Workers.Dir))
	fmt.Fprintf(w, "workers.hash:         %s\n", workerCount(cfg.Workers.Hash))
	fmt.Fprintf(w, "logging.level:        %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "logging.path:         %s\n", logPath)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	anyOverrides := false
	for _, name := range configEnvVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(w, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}
}

func workerCount(n int) string {
	if n <= 0 {
		return "auto"
	}
	return fmt.Sprint(n)
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigFile()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config file already exists: %s\n", configPath)
		fmt.Fprintln(out, "Use 'dupsweep config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintf(out, "Created default config file: %s\n", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigFile()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
