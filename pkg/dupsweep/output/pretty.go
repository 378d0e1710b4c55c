package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter renders groups with colors and boxes using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatGroups(r))

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	source := fmt.Sprintf("%s %s", labelStyle.Render("Source:"), valueStyle.Render(r.Source))

	scanned := fmt.Sprintf("%s %s", labelStyle.Render("Scanned:"),
		valueStyle.Render(fmt.Sprintf("%s files (%s) in %s",
			humanize.Comma(r.Stats.FilesHashed),
			humanize.IBytes(uint64(max(r.Stats.BytesHashed, 0))),
			formatDuration(r.Stats.Duration))))

	info := scanned
	if r.Algorithm != "" {
		info += "  " + labelStyle.Render("hash: "+r.Algorithm)
	}

	return summaryBox.Render(source + "\n" + info)
}

// formatGroups lists each group with its members.
func (f *PrettyFormatter) formatGroups(r *Result) string {
	if len(r.Groups) == 0 {
		return labelStyle.Render("  No duplicates found") + "\n"
	}

	var sb strings.Builder
	for i, g := range r.Groups {
		digest := digestStyle.Render(g.Digest)
		meta := labelStyle.Render(fmt.Sprintf("%d copies of %s", len(g.Paths), g.SizeHuman))
		wasted := wastedStyle.Render(humanize.IBytes(uint64(max(g.Wasted, 0))) + " wasted")

		fmt.Fprintf(&sb, "%s %s  %s  %s\n", indexStyle.Render(fmt.Sprintf("%d.", i+1)), digest, meta, wasted)
		for _, path := range g.Paths {
			fmt.Fprintf(&sb, "   %s\n", valueStyle.Render(path))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Groups:"), valueStyle.Render(humanize.Comma(int64(r.Stats.Groups)))),
		fmt.Sprintf("%s %s", labelStyle.Render("Duplicates:"), valueStyle.Render(humanize.Comma(int64(r.Stats.Duplicates)))),
		fmt.Sprintf("%s %s", labelStyle.Render("Reclaimable:"), wastedStyle.Render(humanize.IBytes(uint64(max(r.Stats.Wasted, 0))))),
		labelStyle.Render("Run dupsweep resolve to pick copies to trash"),
	}
	return totalsBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(wastedStyle.Render(fmt.Sprintf("Warnings (%d):", len(warnings))))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(warnStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
