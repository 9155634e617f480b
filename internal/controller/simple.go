package controller

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	m "pymute.dev/pkg/pymute/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream. It is the
// renderer for non-interactive runs (CI, redirected output).
type SimpleUI struct {
	cmd   *cobra.Command
	level m.OutputLevel

	// mu serializes writes from concurrent engine workers.
	mu sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, level m.OutputLevel) *SimpleUI {
	return &SimpleUI{cmd: cmd, level: level}
}

// DiscoveryCompleted prints the catalog size.
func (s *SimpleUI) DiscoveryCompleted(total int) {
	s.printf("Discovered %d mutant(s)\n", total)
}

// RunStarted prints the number of mutants about to be executed.
func (s *SimpleUI) RunStarted(total int) {
	s.printf("Running %d mutant(s)\n", total)
}

// MutantStarted prints the mutant entering execution. Only shown at the
// process output level; at lower levels it is noise.
func (s *SimpleUI) MutantStarted(mutant m.Mutant) {
	if s.level < m.OutputProcess {
		return
	}

	s.printf("Starting %s\n", mutant.String())
}

// MutantClassified prints the verdict for one finished mutant.
func (s *SimpleUI) MutantClassified(outcome m.Outcome) {
	line := renderOutcome(outcome, s.level)
	if line == "" {
		return
	}

	s.printf("%s\n", line)
}

// DisplayCatalog prints the full mutant catalog as a table.
func (s *SimpleUI) DisplayCatalog(mutants []m.Mutant) {
	s.printf("\n%s", renderCatalog(mutants))
}

// DisplaySummary prints the final counts and the mutation score.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	s.printf("\n%s", renderSummary(summary))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
