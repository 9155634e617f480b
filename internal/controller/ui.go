// Package controller provides output adapters for displaying mutation run
// progress and results.
package controller

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	m "pymute.dev/pkg/pymute/internal/model"
)

// UI defines the interface for reporting run progress and results.
// Implementations can use different output methods (simple text, TUI, etc).
// MutantStarted and MutantClassified may be called from concurrent workers.
type UI interface {
	// DiscoveryCompleted reports the catalog size after scan and merge.
	DiscoveryCompleted(total int)
	// RunStarted reports how many mutants are about to be executed.
	RunStarted(total int)
	// MutantStarted reports that a mutant entered execution.
	MutantStarted(mutant m.Mutant)
	// MutantClassified reports a finished mutant with its verdict.
	MutantClassified(outcome m.Outcome)
	// DisplayCatalog renders the full mutant catalog.
	DisplayCatalog(mutants []m.Mutant)
	// DisplaySummary renders the final counts and score. For interactive
	// renderers this also tears the progress view down.
	DisplaySummary(summary m.Summary)
}

// NewUI creates a UI based on whether TTY mode is enabled.
// When useTTY is true, it returns a TUI (Bubble Tea).
// When useTTY is false, it returns a SimpleUI (plain text).
func NewUI(cmd *cobra.Command, useTTY bool, level m.OutputLevel) UI {
	if useTTY {
		return NewTUI(cmd.OutOrStdout(), level)
	}

	return NewSimpleUI(cmd, level)
}

// IsTTY checks if the given writer is a terminal (TTY).
// Returns false if the output is redirected to a file or pipe.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
