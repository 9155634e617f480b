package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "pymute.dev/pkg/pymute/internal/model"
)

// SummaryStore persists the per-run summary next to the cache so CI jobs can
// pick up the surviving mutants without scraping terminal output.
type SummaryStore interface {
	Save(path string, summary m.Summary) error
}

type yamlSummaryStore struct{}

// NewSummaryStore constructs the YAML-backed summary store.
func NewSummaryStore() SummaryStore {
	return &yamlSummaryStore{}
}

func (s *yamlSummaryStore) Save(path string, summary m.Summary) error {
	content, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write run summary %s: %w", path, err)
	}

	return nil
}
