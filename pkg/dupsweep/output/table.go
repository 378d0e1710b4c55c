package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter writes digest, size and path rows with RFC 4180 quoting.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"digest", "size", "path"}); err != nil {
		return err
	}

	for _, g := range r.Groups {
		size := strconv.FormatInt(g.Size, 10)
		for _, path := range g.Paths {
			if err := writer.Write([]string{g.Digest, size, path}); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

var _ Formatter = (*CSVFormatter)(nil)
