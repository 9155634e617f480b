// Package model defines the data structures for mutation testing.
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Status is the last known test outcome for a mutant. It is excluded from
// the mutant's identity so cached results can be carried across runs.
type Status string

const (
	// StatusNotRun marks a mutant that has never been executed.
	StatusNotRun Status = "NotRun"
	// StatusCaught marks a mutant that made the test oracle fail.
	StatusCaught Status = "Caught"
	// StatusMissed marks a mutant that survived the test oracle.
	StatusMissed Status = "Missed"
)

// ParseStatus validates a persisted status value.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusNotRun, StatusCaught, StatusMissed:
		return Status(value), nil
	}

	return "", fmt.Errorf("unknown mutant status %q", value)
}

// Mutant describes a single candidate one-line textual alteration.
type Mutant struct {
	// FilePath points at the file the mutant lives in, as produced by
	// discovery (relative or absolute depending on the glob used).
	FilePath string
	// LineNumber is 1-based.
	LineNumber int
	// Before is the trigger substring, After its replacement.
	Before string
	After  string
	// OriginalLine is the untouched line captured at discovery time,
	// without its terminator. It is empty for mutants loaded from the
	// cache, in which case Apply captures it lazily.
	OriginalLine string
	Status       Status
}

// Identity is the cache key for a mutant. Status and OriginalLine are
// deliberately excluded.
type Identity struct {
	FilePath   string
	LineNumber int
	Before     string
	After      string
}

// Identity returns the cache key for the mutant.
func (m *Mutant) Identity() Identity {
	return Identity{
		FilePath:   m.FilePath,
		LineNumber: m.LineNumber,
		Before:     m.Before,
		After:      m.After,
	}
}

func (m *Mutant) String() string {
	return fmt.Sprintf("%q replaced by %q in file %s on line %d",
		m.Before, m.After, m.FilePath, m.LineNumber)
}

// MutatedLine returns the original line with the first occurrence of Before
// replaced by After.
func (m *Mutant) MutatedLine() string {
	return strings.Replace(m.OriginalLine, m.Before, m.After, 1)
}

// Diff renders a unified diff of the original against the mutated line.
func (m *Mutant) Diff() string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        []string{m.OriginalLine + "\n"},
		B:        []string{m.MutatedLine() + "\n"},
		FromFile: m.FilePath,
		ToFile:   m.FilePath + " (mutant)",
		Context:  0,
	})
	if err != nil {
		return ""
	}

	return text
}

// Apply rewrites the mutant's file, replacing the first occurrence of Before
// with After on the target line. Every other byte of the file, including line
// terminators and the presence or absence of a trailing newline, is
// preserved. When OriginalLine is empty (cache-loaded mutants) the pre-patch
// line is captured so Revert can restore it later.
func (m *Mutant) Apply() error {
	return m.applyTo(m.FilePath)
}

// ApplyInCopy resolves the mutant's file relative to root, re-roots it under
// newRoot (which must already hold a full copy of the tree) and applies the
// mutant there. The original tree is left untouched.
func (m *Mutant) ApplyInCopy(root, newRoot string) error {
	target, err := m.pathInRoot(root, newRoot)
	if err != nil {
		return err
	}

	return m.applyTo(target)
}

// Revert rewrites the target line back to the captured original line.
func (m *Mutant) Revert() error {
	if m.OriginalLine == "" {
		return fmt.Errorf("mutant on %s:%d has no captured original line", m.FilePath, m.LineNumber)
	}

	return m.rewriteLine(m.FilePath, func(string) string {
		return m.OriginalLine
	})
}

func (m *Mutant) applyTo(path string) error {
	return m.rewriteLine(path, func(current string) string {
		if m.OriginalLine == "" {
			m.OriginalLine = current
		}

		return strings.Replace(current, m.Before, m.After, 1)
	})
}

// rewriteLine reads path, replaces the text of the mutant's line via edit
// (terminators excluded) and writes the file back with its original mode.
func (m *Mutant) rewriteLine(path string, edit func(string) string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := SplitLinesKeepEnds(string(content))

	index := m.LineNumber - 1
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("line %d out of range for %s (%d lines)", m.LineNumber, path, len(lines))
	}

	text, terminator := splitTerminator(lines[index])
	lines[index] = edit(text) + terminator

	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), info.Mode()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (m *Mutant) pathInRoot(root, newRoot string) (string, error) {
	absFile, err := filepath.Abs(m.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", m.FilePath, err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to root %s: %w", m.FilePath, root, err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %s is not under root %s", m.FilePath, root)
	}

	return filepath.Join(newRoot, rel), nil
}

// SplitLinesKeepEnds splits content into lines, each retaining its own
// terminator. A final fragment without a terminator is kept as-is, so joining
// the result reproduces the input byte-for-byte.
func SplitLinesKeepEnds(content string) []string {
	if content == "" {
		return nil
	}

	var lines []string

	start := 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}

	if start < len(content) {
		lines = append(lines, content[start:])
	}

	return lines
}

// splitTerminator separates a line into its text and its terminator
// ("\n", "\r\n" or none).
func splitTerminator(line string) (string, string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}

	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}

	return line, ""
}
