package adapter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	m "pymute.dev/pkg/pymute/internal/model"
)

// ErrCorruptCache marks a cache file that exists but cannot be parsed. It is
// fatal for the whole run: history is never silently discarded.
var ErrCorruptCache = errors.New("corrupt mutant cache")

var cacheHeader = []string{"file_path", "line_number", "before", "after", "status"}

// CacheStore persists the mutant catalog with its last known statuses as a
// flat delimited-record file.
type CacheStore interface {
	Load(path string) ([]m.Mutant, error)
	Save(path string, mutants []m.Mutant) error
}

type csvCacheStore struct{}

// NewCacheStore constructs the CSV-backed cache store.
func NewCacheStore() CacheStore {
	return &csvCacheStore{}
}

// Load reads the cache file. Any parse failure is wrapped in ErrCorruptCache.
func (s *csvCacheStore) Load(path string) ([]m.Mutant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(cacheHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header", ErrCorruptCache, path)
	}

	for i, name := range cacheHeader {
		if records[0][i] != name {
			return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrCorruptCache, path, records[0])
		}
	}

	mutants := make([]m.Mutant, 0, len(records)-1)

	for _, record := range records[1:] {
		mutant, err := mutantFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptCache, path, err)
		}

		mutants = append(mutants, mutant)
	}

	return mutants, nil
}

func mutantFromRecord(record []string) (m.Mutant, error) {
	line, err := strconv.Atoi(record[1])
	if err != nil {
		return m.Mutant{}, fmt.Errorf("invalid line number %q", record[1])
	}

	status, err := m.ParseStatus(record[4])
	if err != nil {
		return m.Mutant{}, err
	}

	return m.Mutant{
		FilePath:   record[0],
		LineNumber: line,
		Before:     record[2],
		After:      record[3],
		Status:     status,
	}, nil
}

// Save atomically overwrites the cache file: records are written to a
// temporary file in the same directory and renamed into place, so a crash
// mid-write never corrupts the previous cache.
func (s *csvCacheStore) Save(path string, mutants []m.Mutant) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)

	writeErr := writer.Write(cacheHeader)

	for _, mutant := range mutants {
		if writeErr != nil {
			break
		}

		writeErr = writer.Write([]string{
			mutant.FilePath,
			strconv.Itoa(mutant.LineNumber),
			mutant.Before,
			mutant.After,
			string(mutant.Status),
		})
	}

	writer.Flush()

	if writeErr == nil {
		writeErr = writer.Error()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache %s: %w", path, writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache %s: %w", path, err)
	}

	return nil
}
