package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dupsweep",
		Short: "Find files with identical content",
		Long: heredoc.Doc(`
			Dupsweep walks a directory tree, fingerprints every regular file by its
			content and reports the files that share a fingerprint.

			Two modes are available:
			  list     print every duplicate group as one JSON object
			  resolve  step through the groups and move chosen copies to the trash

			Examples:
			  dupsweep list                 # Duplicates under the current directory
			  dupsweep list ~/Photos        # Duplicates under a specific directory
			  dupsweep list -o pretty .     # Human-readable report
			  dupsweep resolve ~/Downloads  # Pick copies to move to the trash
			  dupsweep config show          # Show configuration
		`),
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/dupsweep/config.yaml)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().StringSliceP("include", "i", nil, "only hash files matching these glob patterns")
	rootCmd.PersistentFlags().String("min-size", "", "skip files smaller than this (e.g., 1K, 10M)")
	rootCmd.PersistentFlags().String("hash", "", "content digest: md5, sha256, xxhash, blake3")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "override both worker pools (0=auto)")
	rootCmd.PersistentFlags().Bool("strict", false, "abort on the first unreadable directory or file")
	rootCmd.PersistentFlags().Bool("absolute", false, "report absolute paths")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("include", rootCmd.PersistentFlags().Lookup("include"))
	_ = viper.BindPFlag("min_size", rootCmd.PersistentFlags().Lookup("min-size"))
	_ = viper.BindPFlag("hash", rootCmd.PersistentFlags().Lookup("hash"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("absolute", rootCmd.PersistentFlags().Lookup("absolute"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "dupsweep"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "dupsweep"))
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	_ = logging.Close()
	return err
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printNotice prints a message to stderr unless quiet mode is enabled.
// Stdout is reserved for command output.
func printNotice(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
