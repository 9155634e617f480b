package model

import (
	"fmt"
	"strings"
)

// Runner identifies the external test oracle used to judge mutants. The set
// is closed and validated once when configuration is loaded.
type Runner int

const (
	// RunnerPytest invokes pytest through the project interpreter with a
	// test path selector and fail-fast flag.
	RunnerPytest Runner = iota
	// RunnerTox invokes tox, optionally against a named environment.
	RunnerTox
)

func (r Runner) String() string {
	switch r {
	case RunnerPytest:
		return "pytest"
	case RunnerTox:
		return "tox"
	}

	return "unknown"
}

// ParseRunner validates a runner name from configuration.
func ParseRunner(value string) (Runner, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pytest":
		return RunnerPytest, nil
	case "tox":
		return RunnerTox, nil
	}

	return 0, fmt.Errorf("unknown runner %q (expected pytest or tox)", value)
}

// OutputLevel controls how much of the run is shown to the user.
type OutputLevel int

const (
	// OutputMissed prints only mutants the tests missed.
	OutputMissed OutputLevel = iota
	// OutputCaught also prints mutants the tests caught.
	OutputCaught
	// OutputProcess additionally passes the oracle's own output through.
	OutputProcess
)

func (l OutputLevel) String() string {
	switch l {
	case OutputMissed:
		return "missed"
	case OutputCaught:
		return "caught"
	case OutputProcess:
		return "process"
	}

	return "unknown"
}

// ParseOutputLevel validates an output level name from configuration.
func ParseOutputLevel(value string) (OutputLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "missed":
		return OutputMissed, nil
	case "caught":
		return OutputCaught, nil
	case "process":
		return OutputProcess, nil
	}

	return 0, fmt.Errorf("unknown output level %q (expected missed, caught or process)", value)
}

// Category is a named group of mutation rules.
type Category string

const (
	// CategoryMathOps mutates arithmetic operators.
	CategoryMathOps Category = "mathops"
	// CategoryConjunctions mutates boolean conjunctions (and/or).
	CategoryConjunctions Category = "conjunctions"
	// CategoryBooleans mutates boolean literals.
	CategoryBooleans Category = "booleans"
	// CategoryControlFlow mutates control flow statements.
	CategoryControlFlow Category = "controlflow"
	// CategoryCompOps mutates comparison operators.
	CategoryCompOps Category = "compops"
	// CategoryNumbers mutates digit literals (off-by-one).
	CategoryNumbers Category = "numbers"
)

// AllCategories lists every category in declaration order. Rule tables are
// assembled in this order regardless of how categories were requested.
var AllCategories = []Category{
	CategoryMathOps,
	CategoryConjunctions,
	CategoryBooleans,
	CategoryControlFlow,
	CategoryCompOps,
	CategoryNumbers,
}

// ParseCategories validates a list of category names. An empty list enables
// every category.
func ParseCategories(values []string) ([]Category, error) {
	if len(values) == 0 {
		return AllCategories, nil
	}

	categories := make([]Category, 0, len(values))

	for _, value := range values {
		category := Category(strings.ToLower(strings.TrimSpace(value)))

		switch category {
		case CategoryMathOps, CategoryConjunctions, CategoryBooleans,
			CategoryControlFlow, CategoryCompOps, CategoryNumbers:
			categories = append(categories, category)
		default:
			return nil, fmt.Errorf("unknown mutation category %q", value)
		}
	}

	return categories, nil
}

// Outcome is the result of executing one mutant against the oracle. A
// non-nil Err marks a per-mutant failure (patching or spawning the oracle)
// and is reported separately from Caught/Missed.
type Outcome struct {
	Mutant Mutant
	Status Status
	Err    error
}

// Summary aggregates a finished run for user-facing reporting.
type Summary struct {
	Total  int `yaml:"total"`
	Caught int `yaml:"caught"`
	Missed int `yaml:"missed"`
	Errors int `yaml:"errors"`

	// MissedMutants is the actionable signal: faults the suite let through.
	MissedMutants []MissedMutant `yaml:"missed_mutants,omitempty"`
}

// MissedMutant is the persisted shape of a surviving mutant in the summary.
type MissedMutant struct {
	File   string `yaml:"file"`
	Line   int    `yaml:"line"`
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// Score returns the fraction of executed mutants that were caught.
func (s Summary) Score() float64 {
	executed := s.Caught + s.Missed
	if executed == 0 {
		return 0
	}

	return float64(s.Caught) / float64(executed)
}
