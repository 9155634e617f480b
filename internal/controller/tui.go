package controller

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	m "pymute.dev/pkg/pymute/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display: a progress bar
// tracks the batch while classified mutants scroll above it.
type TUI struct {
	output io.Writer
	level  m.OutputLevel

	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, level m.OutputLevel) *TUI {
	return &TUI{output: output, level: level}
}

// DiscoveryCompleted prints the catalog size before the progress view starts.
func (t *TUI) DiscoveryCompleted(total int) {
	_, _ = fmt.Fprintf(t.output, "Discovered %d mutant(s)\n", total)
}

// RunStarted launches the progress program. Events arriving before it is
// running are queued by Bubble Tea's Send.
func (t *TUI) RunStarted(total int) {
	model := newRunModel(total, t.level)

	t.program = tea.NewProgram(model, tea.WithOutput(t.output))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			slog.Error("progress view failed", "error", err)
		}
	}()
}

// MutantStarted forwards the event to the progress view.
func (t *TUI) MutantStarted(mutant m.Mutant) {
	if t.program == nil || t.level < m.OutputProcess {
		return
	}

	t.program.Send(mutantStartedMsg{mutant: mutant})
}

// MutantClassified forwards the verdict to the progress view.
func (t *TUI) MutantClassified(outcome m.Outcome) {
	if t.program == nil {
		return
	}

	t.program.Send(mutantClassifiedMsg{outcome: outcome})
}

// DisplayCatalog prints the catalog table. The catalog is static content, so
// no interactive program is needed for it.
func (t *TUI) DisplayCatalog(mutants []m.Mutant) {
	_, _ = fmt.Fprintf(t.output, "\n%s", renderCatalog(mutants))
}

// DisplaySummary hands the summary to the progress view, which prints it and
// quits, then waits for the program to finish.
func (t *TUI) DisplaySummary(summary m.Summary) {
	if t.program == nil {
		_, _ = fmt.Fprintf(t.output, "\n%s", renderSummary(summary))
		return
	}

	t.program.Send(summaryMsg{summary: summary})

	<-t.done
}

type mutantStartedMsg struct {
	mutant m.Mutant
}

type mutantClassifiedMsg struct {
	outcome m.Outcome
}

type summaryMsg struct {
	summary m.Summary
}

// runModel is the Bubble Tea model tracking batch progress.
type runModel struct {
	bar   progress.Model
	level m.OutputLevel

	total     int
	completed int
	quitting  bool
}

func newRunModel(total int, level m.OutputLevel) runModel {
	return runModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		level: level,
		total: total,
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

//nolint:cyclop // Message dispatch requires one case per event type
func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width < 10 {
			width = 10
		}

		rm.bar.Width = width

		return rm, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			rm.quitting = true
			return rm, tea.Quit
		}

		return rm, nil

	case mutantStartedMsg:
		return rm, tea.Println("Starting " + msg.mutant.String())

	case mutantClassifiedMsg:
		rm.completed++

		cmds := []tea.Cmd{rm.bar.SetPercent(rm.percent())}

		if line := renderOutcome(msg.outcome, rm.level); line != "" {
			cmds = append(cmds, tea.Println(line))
		}

		return rm, tea.Batch(cmds...)

	case summaryMsg:
		rm.quitting = true

		return rm, tea.Sequence(
			tea.Println("\n"+renderSummary(msg.summary)),
			tea.Quit,
		)

	case progress.FrameMsg:
		barModel, cmd := rm.bar.Update(msg)

		if updated, ok := barModel.(progress.Model); ok {
			rm.bar = updated
		}

		return rm, cmd
	}

	return rm, nil
}

func (rm runModel) percent() float64 {
	if rm.total < 1 {
		return 1
	}

	return float64(rm.completed) / float64(rm.total)
}

func (rm runModel) View() string {
	if rm.quitting {
		return ""
	}

	return fmt.Sprintf("\n  %s %d/%d\n", rm.bar.View(), rm.completed, rm.total)
}
