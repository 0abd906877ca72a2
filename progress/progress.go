// Package progress prints phase-by-phase progress to a terminal, in the
// style of the teacher's logging/display.go (displayBeginPhase/
// displayEndPhase spinners). It is not part of this module's core API —
// the source/preprocess/syntax/symbols/binder/eval packages never import
// it, and never print anything themselves. cmd/svinfo wires this in as an
// example of how a downstream driver might report progress, which this
// module's specification deliberately leaves external.
package progress

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Reporter tracks a sequence of named phases and prints a spinner-style
// start/finish line for each, the same shape as the teacher's
// displayBeginPhase/displayEndPhase pair.
type Reporter struct {
	spinner *pterm.SpinnerPrinter
	quiet   bool
}

// New creates a Reporter. If quiet is true, all output is suppressed.
func New(quiet bool) *Reporter {
	return &Reporter{quiet: quiet}
}

// BeginPhase starts a spinner labeled name.
func (r *Reporter) BeginPhase(name string) {
	if r.quiet {
		return
	}
	s, _ := pterm.DefaultSpinner.Start(name)
	r.spinner = s
}

// EndPhase stops the active spinner, marking it successful or failed.
func (r *Reporter) EndPhase(ok bool) {
	if r.quiet || r.spinner == nil {
		return
	}
	if ok {
		r.spinner.Success()
	} else {
		r.spinner.Fail()
	}
	r.spinner = nil
}

// Summary prints a one-line closing banner, mirroring the teacher's
// displayCompilationFinished.
func (r *Reporter) Summary(errorCount int) {
	if r.quiet {
		return
	}
	if errorCount == 0 {
		pterm.Success.Println("compilation finished with no errors")
		return
	}
	pterm.Error.Println(fmt.Sprintf("compilation finished with %d error(s)", errorCount))
}
