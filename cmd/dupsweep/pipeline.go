package main

import (
	"context"
	"fmt"

	"github.com/jamesainslie/dupsweep/pkg/dupsweep/config"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/dedupe"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/hasher"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/logging"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/scanner"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/tuner"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scanSettings is everything a command needs to run the pipeline.
type scanSettings struct {
	Root     string
	MinSize  int64
	Exclude  []string
	Include  []string
	Hasher   hasher.Hasher
	Strict   bool
	Absolute bool
	Tuned    tuner.OptimalConfig
}

// loadScanSettings resolves the scan root and settings from args, flags,
// the config file and the environment.
func loadScanSettings(cmd *cobra.Command, args []string) (*scanSettings, error) {
	root := config.DefaultPath
	if len(args) > 0 {
		root = args[0]
	} else if defaultPath := viper.GetString("default_path"); defaultPath != "" {
		root = defaultPath
	}

	root, err := config.ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path: %w", err)
	}

	minSizeStr := viper.GetString("min_size")
	if minSizeStr == "" {
		minSizeStr = config.DefaultMinSize
	}
	minSize, err := types.ParseSize(minSizeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum size %q: %w", minSizeStr, err)
	}

	h, err := hasher.New(viper.GetString("hash"))
	if err != nil {
		return nil, err
	}

	overrides := tuner.Overrides{
		DirWorkers:  viper.GetInt("workers.dir"),
		HashWorkers: viper.GetInt("workers.hash"),
	}
	if cmd != nil {
		if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
			overrides = tuner.Overrides{DirWorkers: workers, HashWorkers: workers}
		}
	}

	resources, err := tuner.Detect()
	if err != nil {
		printVerbose("Failed to detect system resources, using defaults: %v", err)
	}
	tuned := tuner.CalculateWithOverrides(resources, overrides)

	printVerbose("System: %d CPUs, %s RAM, %s available",
		resources.CPUCores,
		types.FormatSize(resources.TotalRAM),
		types.FormatSize(resources.AvailableRAM))
	printVerbose("Config: %d dir workers, %d hash workers, queue size %d, %s digest",
		tuned.DirWorkers, tuned.HashWorkers, tuned.QueueSize, h.Name())

	return &scanSettings{
		Root:     root,
		MinSize:  minSize,
		Exclude:  viper.GetStringSlice("exclude"),
		Include:  viper.GetStringSlice("include"),
		Hasher:   h,
		Strict:   viper.GetBool("strict"),
		Absolute: viper.GetBool("absolute"),
		Tuned:    tuned,
	}, nil
}

// scannerOptions builds the walker options for s.
func (s *scanSettings) scannerOptions(onProgress func(types.ScanProgress)) scanner.Options {
	return scanner.Options{
		Root:        s.Root,
		Absolute:    s.Absolute,
		MinSize:     s.MinSize,
		Exclude:     s.Exclude,
		Include:     s.Include,
		DirWorkers:  s.Tuned.DirWorkers,
		HashWorkers: s.Tuned.HashWorkers,
		QueueSize:   s.Tuned.QueueSize,
		Hasher:      s.Hasher,
		OnProgress:  onProgress,
	}
}

// runPipeline walks the root, groups the digests and returns the report.
// Skipped entries are counted on stderr; their details go to the log and,
// with --verbose, to stderr as they happen.
func runPipeline(ctx context.Context, s *scanSettings, onProgress func(types.ScanProgress)) (*dedupe.Report, error) {
	sc, err := scanner.New(s.scannerOptions(onProgress))
	if err != nil {
		return nil, err
	}

	report, err := dedupe.Run(ctx, sc, dedupe.Options{Strict: s.Strict})
	if err != nil {
		return nil, err
	}

	if n := len(report.Warnings); n > 0 {
		printNotice("Skipped %d unreadable entries (see %s)", n, logPathHint())
	}
	printVerbose("Hashed %d files (%s) in %d directories, %d duplicate groups",
		report.Stats.FilesHashed, types.FormatSize(report.Stats.BytesHashed),
		report.Stats.DirsScanned, report.Stats.Groups)

	return report, nil
}

// logPathHint names the log file that holds warning details.
func logPathHint() string {
	if p, err := config.ExpandPath(viper.GetString("logging.path")); err == nil && p != "" {
		return p
	}
	return logging.DefaultLogPath()
}
