package util

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Diag prints diagnostics to an io.Writer, colorizing them when the
// underlying file descriptor is a terminal and colorization was not
// force-disabled. Grounded in funvibe-funxy's internal/evaluator's use of
// go-isatty to decide whether to colorize terminal output
// (internal/evaluator/builtins_term.go).
type Diag struct {
	w      io.Writer
	colors bool
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewDiag returns a Diag writing to w. If w is an *os.File, colorization is
// enabled automatically when the file is a terminal; pass noColor=true to
// force it off regardless (e.g. when output is redirected to a build log).
func NewDiag(w io.Writer, noColor bool) *Diag {
	colors := false
	if !noColor {
		if f, ok := w.(*os.File); ok {
			colors = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &Diag{w: w, colors: colors}
}

// Warn prints a yellow (when colorized) warning diagnostic.
func (d *Diag) Warn(err error) {
	d.print("33", "warning", err)
}

// Error prints a red (when colorized) error diagnostic.
func (d *Diag) Error(err error) {
	d.print("31", "error", err)
}

func (d *Diag) print(ansiCode, label string, err error) {
	if d.colors {
		_, _ = fmt.Fprintf(d.w, "\x1b[%sm%s:\x1b[0m %s\n", ansiCode, label, err)
	} else {
		_, _ = fmt.Fprintf(d.w, "%s: %s\n", label, err)
	}
}
