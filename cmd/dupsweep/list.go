package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/jamesainslie/dupsweep/pkg/dupsweep/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "Print duplicate groups",
	Long: heredoc.Doc(`
		Scan a directory and print every group of files with identical content.

		The default json format prints a single line mapping each content digest to
		the paths that share it. Only digests held by two or more files appear.

		Output formats:
		  json      {"<digest>":["a.txt","b.txt"]} on one line (default)
		  jsonl     one object per group
		  yaml      the json mapping as YAML
		  plain     tab-aligned digest, size and path rows
		  paths     one path per line, groups separated by blank lines
		  null      NUL-delimited paths for xargs -0
		  csv       digest,size,path rows
		  pretty    human-readable report
		  template  custom Go template (see --template)

		Examples:
		  dupsweep list
		  dupsweep list ~/Music -o pretty
		  dupsweep list --min-size 1M --hash xxhash /data
		  dupsweep list -o template --template '{{range .Groups}}{{.Digest}} {{count .Paths}}{{"\n"}}{{end}}'
	`),
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("output", "o", "json", "output format: "+fmt.Sprint(output.Available()))
	listCmd.Flags().String("template", "", "Go template for -o template")

	_ = viper.BindPFlag("output", listCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("template", listCmd.Flags().Lookup("template"))

	rootCmd.AddCommand(listCmd)
}

// runList is the list command handler.
func runList(cmd *cobra.Command, args []string) error {
	formatter, err := listFormatter()
	if err != nil {
		return err
	}

	settings, err := loadScanSettings(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	report, err := runPipeline(ctx, settings, nil)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	result := output.FromReport(settings.Root, settings.Hasher.Name(), report)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

// listFormatter returns the formatter selected by --output.
func listFormatter() (output.Formatter, error) {
	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = "json"
	}

	if outFormat == "template" {
		if tmpl := viper.GetString("template"); tmpl != "" {
			return output.NewTemplateFormatter(tmpl), nil
		}
	}

	formatter, err := output.Get(outFormat)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}
	return formatter, nil
}

// commandContext returns the command's context, cancelled on Ctrl-C or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
