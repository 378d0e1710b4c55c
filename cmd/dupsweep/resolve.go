package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/jamesainslie/dupsweep/cmd/dupsweep/tui"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/dedupe"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/resolve"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/trash"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Choose duplicates to move to the trash",
	Long: heredoc.Doc(`
		Scan a directory, then present each group of identical files in turn.

		For every group, enter the numbers of the copies to move to the trash,
		separated by commas (e.g. "2,3"). An empty line keeps every copy. Files are
		always moved to the trash, never deleted outright.

		Examples:
		  dupsweep resolve
		  dupsweep resolve ~/Downloads
		  dupsweep resolve --dry-run ~/Pictures
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolP("dry-run", "d", false, "report selections without moving files")
	resolveCmd.Flags().Bool("no-progress", false, "do not draw the scanning indicator")

	_ = viper.BindPFlag("dry_run", resolveCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("no_progress", resolveCmd.Flags().Lookup("no-progress"))

	rootCmd.AddCommand(resolveCmd)
}

// runResolve is the resolve command handler.
func runResolve(cmd *cobra.Command, args []string) error {
	settings, err := loadScanSettings(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	var (
		indicator  *tui.Indicator
		onProgress func(types.ScanProgress)
	)
	if showIndicator() {
		indicator = tui.StartIndicator(os.Stderr, settings.Root)
		onProgress = indicator.Update
	}

	report, err := runPipeline(ctx, settings, onProgress)
	if indicator != nil {
		indicator.Stop(err)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return resolveGroups(ctx, cmd, report, trash.Default())
}

// resolveGroups runs the interactive loop over the report's groups using t
// as the soft-delete collaborator.
func resolveGroups(ctx context.Context, cmd *cobra.Command, report *dedupe.Report, t resolve.Trasher) error {
	dryRun := viper.GetBool("dry_run")
	r := resolve.New(cmd.InOrStdin(), cmd.OutOrStdout(), t, resolve.WithDryRun(dryRun))

	summary, err := r.Resolve(ctx, report.Groups)
	if err != nil {
		return fmt.Errorf("resolution stopped: %w", err)
	}

	if len(report.Groups) == 0 {
		printNotice("No duplicates found.")
		return nil
	}

	verb := "Moved"
	if dryRun {
		verb = "Would move"
	}
	printNotice("%s %d files to the trash across %d groups (%d failed)",
		verb, summary.Trashed, summary.Groups, summary.Failed)
	return nil
}

// showIndicator reports whether the scanning indicator should be drawn.
func showIndicator() bool {
	if getQuiet() || getVerbose() || viper.GetBool("no_progress") {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
