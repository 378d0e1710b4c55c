package output

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/dustin/go-humanize"
)

// groupSummary prints one line per group: digest, copy count and wasted bytes.
const groupSummary = "{{range .Groups}}{{.Digest}}\t{{count .Paths}} copies\t{{bytes .Wasted}} wasted\n{{end}}"

// funcs are available to every user template, e.g. {{bytes .Stats.Wasted}}.
var funcs = template.FuncMap{
	"bytes": func(n int64) string { return humanize.IBytes(uint64(max(n, 0))) },
	"count": func(paths []string) string { return humanize.Comma(int64(len(paths))) },
}

// TemplateFormatter executes a text/template against the Result. The
// template is parsed on first use; a parse error is returned by every Format.
type TemplateFormatter struct {
	text string

	once sync.Once
	tmpl *template.Template
	err  error
}

// NewTemplateFormatter returns a formatter for the given template text.
func NewTemplateFormatter(text string) *TemplateFormatter {
	return &TemplateFormatter{text: text}
}

func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.once.Do(func() {
		f.tmpl, f.err = template.New("list").Funcs(funcs).Parse(f.text)
	})
	if f.err != nil {
		return fmt.Errorf("parsing template: %w", f.err)
	}
	return f.tmpl.Execute(w, r)
}

func init() {
	Register("template", func() Formatter { return NewTemplateFormatter(groupSummary) })
}
