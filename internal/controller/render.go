package controller

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	m "pymute.dev/pkg/pymute/internal/model"
)

var (
	missedLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Render("MISSED")
	caughtLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true).Render("CAUGHT")
	errorLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Render("ERROR")
)

// renderOutcome formats one classified mutant. It returns an empty string
// when the configured output level hides the verdict.
func renderOutcome(outcome m.Outcome, level m.OutputLevel) string {
	if outcome.Err != nil {
		return fmt.Sprintf("%s %s: %v", errorLabel, outcome.Mutant.String(), outcome.Err)
	}

	switch outcome.Status {
	case m.StatusMissed:
		text := fmt.Sprintf("%s %s", missedLabel, outcome.Mutant.String())

		if diff := outcome.Mutant.Diff(); diff != "" {
			text += "\n" + strings.TrimRight(diff, "\n")
		}

		return text

	case m.StatusCaught:
		if level >= m.OutputCaught {
			return fmt.Sprintf("%s %s", caughtLabel, outcome.Mutant.String())
		}
	}

	return ""
}

// renderCatalog formats the mutant catalog as a table, one row per mutant,
// with a per-file count section at the bottom.
func renderCatalog(mutants []m.Mutant) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Line", "Mutation", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
	})

	for _, mutant := range mutants {
		table.Append([]string{
			mutant.FilePath,
			strconv.Itoa(mutant.LineNumber),
			fmt.Sprintf("%q -> %q", mutant.Before, mutant.After),
			string(mutant.Status),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", countFiles(mutants)),
		"",
		fmt.Sprintf("%d", len(mutants)),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func countFiles(mutants []m.Mutant) int {
	files := make(map[string]struct{}, len(mutants))
	for _, mutant := range mutants {
		files[mutant.FilePath] = struct{}{}
	}

	return len(files)
}

// renderSummary formats the final counts, the surviving mutants and the
// mutation score.
func renderSummary(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Result", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	table.Append([]string{"Caught", fmt.Sprintf("%d", summary.Caught)})
	table.Append([]string{"Missed", fmt.Sprintf("%d", summary.Missed)})
	table.Append([]string{"Errors", fmt.Sprintf("%d", summary.Errors)})

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", summary.Total)})

	table.Render()

	if len(summary.MissedMutants) > 0 {
		missed := make([]m.MissedMutant, len(summary.MissedMutants))
		copy(missed, summary.MissedMutants)

		sort.Slice(missed, func(i, j int) bool {
			if missed[i].File != missed[j].File {
				return missed[i].File < missed[j].File
			}

			return missed[i].Line < missed[j].Line
		})

		tableBuffer.WriteString("\nSurviving mutants:\n")

		for _, mutant := range missed {
			fmt.Fprintf(&tableBuffer, "  %s:%d %q -> %q\n",
				mutant.File, mutant.Line, mutant.Before, mutant.After)
		}
	}

	fmt.Fprintf(&tableBuffer, "\nMutation score: %.2f%%\n", summary.Score()*100)

	return tableBuffer.String()
}
