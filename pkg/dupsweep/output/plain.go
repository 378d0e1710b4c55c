package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// PlainFormatter writes one aligned DIGEST, SIZE, PATH row per member with
// no colors or styling.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := fmt.Fprint(tw, "DIGEST\tSIZE\tPATH\n"); err != nil {
		return err
	}

	for _, g := range r.Groups {
		for _, path := range g.Paths {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Digest, g.SizeHuman, path); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
