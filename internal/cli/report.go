package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/syssam/entitysql/compiler/gen"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// errDiagnostics is returned when a pass dropped requests.
var errDiagnostics = errors.New("generation reported problems")

// report prints the outcome of a pass and returns an error if anything
// was dropped or could not be written.
func report(w io.Writer, res *gen.Result, removed []string, m gen.WriterMetrics, werr error, dryRun bool) error {
	verb, rverb := "wrote", "removed"
	if dryRun {
		verb, rverb = "would write", "would remove"
	}
	for _, o := range res.Outputs {
		fmt.Fprintf(w, "  %s %s\n", infoColor.Sprint(verb), o.Path())
	}
	for _, path := range removed {
		fmt.Fprintf(w, "  %s %s\n", warningColor.Sprint(rverb), path)
	}
	for _, d := range res.Diagnostics {
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintln(w, d)
	}
	if werr != nil {
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintln(w, werr)
	}

	if n := len(res.Diagnostics); n > 0 {
		warningColor.Fprintf(w, "%d of %d markers dropped\n", n, n+len(res.Outputs))
	}
	switch {
	case werr != nil:
		return werr
	case len(res.Diagnostics) > 0:
		return errDiagnostics
	}
	successColor.Fprintf(w, "✓ %d files generated, %d unchanged, %d removed (%d bytes)\n", m.FilesGenerated, m.FilesUnchanged, m.FilesRemoved, m.TotalBytes)
	return nil
}
