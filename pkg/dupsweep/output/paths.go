package output

import (
	"bytes"
)

// PathsFormatter writes one path per line with a blank line between groups.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for i, g := range r.Groups {
		if i > 0 {
			w.WriteByte('\n')
		}
		for _, path := range g.Paths {
			w.WriteString(path)
			w.WriteByte('\n')
		}
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter writes every member path followed by a NUL byte, for use
// with xargs -0. Group boundaries are not marked.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, g := range r.Groups {
		for _, path := range g.Paths {
			w.WriteString(path)
			w.WriteByte(0)
		}
	}
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

var _ Formatter = (*NullFormatter)(nil)
