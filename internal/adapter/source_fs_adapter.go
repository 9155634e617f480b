// Package adapter contains filesystem, subprocess and persistence adapters
// for the pymute CLI.
package adapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on during discovery and execution. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Glob expands a doublestar pattern (supports `**`) into file paths.
	Glob(pattern string) ([]string, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path string, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path.
	FileInfo(path string) (os.FileInfo, error)

	// CreateTempDir creates a disposable directory for one mutant run.
	CreateTempDir(pattern string) (string, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(path string) error

	// CopyDir recursively copies a project tree.
	CopyDir(src, dst string) error
}

// LocalSourceFSAdapter is the concrete implementation backed by the local
// filesystem.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter ready to be wired
// into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Glob expands the pattern. An invalid pattern is reported as an error so
// discovery can treat it as fatal.
func (a *LocalSourceFSAdapter) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	return matches, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path string, content []byte, perm os.FileMode) error {
	return os.WriteFile(path, content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// CreateTempDir creates a temporary directory for one isolated mutant run.
func (a *LocalSourceFSAdapter) CreateTempDir(pattern string) (string, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return tmpDir, nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// CopyDir recursively copies a directory tree, skipping version control
// directories and Python tooling caches that only slow the copy down.
func (a *LocalSourceFSAdapter) CopyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && path != src && skipDirName(filepath.Base(path)) {
			return filepath.SkipDir
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, info.Mode())
		}

		return a.copyFile(path, targetPath, info.Mode())
	})
}

func skipDirName(name string) bool {
	switch name {
	case ".git", ".hg", "__pycache__", ".venv", ".tox", ".pytest_cache", ".mypy_cache":
		return true
	}

	return false
}

// copyFile copies a single file.
func (a *LocalSourceFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}
