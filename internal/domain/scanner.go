package domain

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pymute.dev/pkg/pymute/internal/adapter"
	m "pymute.dev/pkg/pymute/internal/model"
)

// docstringMarkers are the Python triple-quote delimiters.
var docstringMarkers = []string{`"""`, `'''`}

// quotedStringRE strips single- and double-quoted string contents so
// triggers inside literals never match.
var quotedStringRE = regexp.MustCompile(`'[^']*'|"[^"]*"`)

const commentMarker = "#"

// Scanner walks matched files, classifies lines and emits candidate mutants.
type Scanner interface {
	// Discover scans every file matching rootGlob and returns one mutant
	// per matching line, first rule wins. An invalid glob is fatal; an
	// unreadable file is skipped.
	Discover(ctx context.Context, rootGlob string, categories []m.Category) ([]m.Mutant, error)
}

type scanner struct {
	fs adapter.SourceFSAdapter

	// Files whose base name carries the configured test prefix/suffix are
	// never scanned, so the suite cannot mutate itself.
	testPrefix string
	testSuffix string
}

// NewScanner constructs a Scanner over the provided filesystem adapter.
func NewScanner(fs adapter.SourceFSAdapter, testPrefix, testSuffix string) Scanner {
	return &scanner{
		fs:         fs,
		testPrefix: testPrefix,
		testSuffix: testSuffix,
	}
}

func (s *scanner) Discover(ctx context.Context, rootGlob string, categories []m.Category) ([]m.Mutant, error) {
	rules := Replacements(categories)

	paths, err := s.fs.Glob(rootGlob)
	if err != nil {
		return nil, err
	}

	// Glob results are sorted so the catalog does not depend on filesystem
	// iteration order.
	sort.Strings(paths)

	var mutants []m.Mutant

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.isTestFile(path) {
			continue
		}

		content, err := s.fs.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}

		mutants = append(mutants, scanFile(path, string(content), rules)...)
	}

	slog.Debug("discovery finished", "glob", rootGlob, "mutants", len(mutants))

	return mutants, nil
}

func (s *scanner) isTestFile(path string) bool {
	base := filepath.Base(path)

	if s.testPrefix != "" && strings.HasPrefix(base, s.testPrefix) {
		return true
	}

	return s.testSuffix != "" && strings.HasSuffix(base, s.testSuffix)
}

// scanFile classifies each line and emits at most one mutant per line. The
// docstring toggle follows the Python triple-quote convention: a line
// holding a delimiter exactly twice is a self-contained block (skipped, no
// toggle), a line holding one flips the block state.
func scanFile(path, content string, rules []Rule) []m.Mutant {
	var mutants []m.Mutant

	inDocstring := false

	for i, raw := range m.SplitLinesKeepEnds(content) {
		line := trimTerminator(raw)

		if selfContainedDocstring(line) {
			continue
		}

		if containsDocstringMarker(line) {
			inDocstring = !inDocstring
		}

		if strings.HasPrefix(line, commentMarker) {
			continue
		}

		if inDocstring {
			continue
		}

		processed := strings.SplitN(line, commentMarker, 2)[0]
		processed = quotedStringRE.ReplaceAllString(processed, "")

		rule, ok := FirstMatch(processed, rules)
		if !ok {
			continue
		}

		mutants = append(mutants, m.Mutant{
			FilePath:     path,
			LineNumber:   i + 1,
			Before:       rule.Before,
			After:        rule.After,
			OriginalLine: line,
			Status:       m.StatusNotRun,
		})
	}

	return mutants
}

func selfContainedDocstring(line string) bool {
	for _, marker := range docstringMarkers {
		if strings.Count(line, marker) == 2 {
			return true
		}
	}

	return false
}

func containsDocstringMarker(line string) bool {
	for _, marker := range docstringMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}

	return false
}

func trimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
