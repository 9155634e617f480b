package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	m "pymute.dev/pkg/pymute/internal/model"
)

func TestSummaryStore_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pymute_summary.yaml")

	summary := m.Summary{
		Total:  3,
		Caught: 2,
		Missed: 1,
		MissedMutants: []m.MissedMutant{
			{File: "calc.py", Line: 7, Before: " + ", After: " - "},
		},
	}

	require.NoError(t, NewSummaryStore().Save(path, summary))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded m.Summary
	require.NoError(t, yaml.Unmarshal(content, &loaded))

	assert.Equal(t, summary, loaded)
}

func TestSummaryStore_Save_OmitsEmptyMissedList(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".pymute_summary.yaml")

	require.NoError(t, NewSummaryStore().Save(path, m.Summary{Total: 1, Caught: 1}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotContains(t, string(content), "missed_mutants")
}
