// Package report renders human-readable command summaries on stdout,
// separate from the structured diagnostic log.
package report

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// Printer writes aligned label/value summaries.
type Printer struct {
	w *tabwriter.Writer
}

// New builds a printer over the given writer; nil defaults to stdout.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

// Title prints a section heading.
func (p *Printer) Title(title string) {
	fmt.Fprintf(p.w, "%s\n", title)
}

// Row prints one aligned label/value pair.
func (p *Printer) Row(label string, value any) {
	fmt.Fprintf(p.w, "  %s\t%v\n", label, value)
}

// Flush writes everything out.
func (p *Printer) Flush() {
	p.w.Flush()
}
