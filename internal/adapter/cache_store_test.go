package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "pymute.dev/pkg/pymute/internal/model"
)

func cacheFixture() []m.Mutant {
	return []m.Mutant{
		{FilePath: "calc.py", LineNumber: 3, Before: " + ", After: " - ", Status: m.StatusCaught},
		{FilePath: "pkg/util.py", LineNumber: 12, Before: "==", After: "!=", Status: m.StatusMissed},
		{FilePath: "app.py", LineNumber: 1, Before: " True ", After: " False ", Status: m.StatusNotRun},
	}
}

func TestCacheStore_RoundTrip(t *testing.T) {
	store := NewCacheStore()
	path := filepath.Join(t.TempDir(), ".pymute_cache.csv")

	require.NoError(t, store.Save(path, cacheFixture()))

	loaded, err := store.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cacheFixture(), loaded)
}

func TestCacheStore_SaveIsIdempotent(t *testing.T) {
	store := NewCacheStore()
	path := filepath.Join(t.TempDir(), ".pymute_cache.csv")

	require.NoError(t, store.Save(path, cacheFixture()))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(path, cacheFixture()))

	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCacheStore_Save_WritesHeader(t *testing.T) {
	store := NewCacheStore()
	path := filepath.Join(t.TempDir(), ".pymute_cache.csv")

	require.NoError(t, store.Save(path, nil))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file_path,line_number,before,after,status\n", string(content))
}

func TestCacheStore_RoundTrip_QuotesCommas(t *testing.T) {
	store := NewCacheStore()
	path := filepath.Join(t.TempDir(), ".pymute_cache.csv")

	mutants := []m.Mutant{
		{FilePath: "weird,name.py", LineNumber: 1, Before: "f(a, b)", After: "f(b, a)", Status: m.StatusNotRun},
	}

	require.NoError(t, store.Save(path, mutants))

	loaded, err := store.Load(path)
	require.NoError(t, err)

	assert.Equal(t, mutants, loaded)
}

func TestCacheStore_Load_MissingFile(t *testing.T) {
	_, err := NewCacheStore().Load(filepath.Join(t.TempDir(), "nope.csv"))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorruptCache)
}

func TestCacheStore_Load_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong field count", "a,b\n"},
		{"wrong header", "path,line,old,new,result\ncalc.py,1, + , - ,Caught\n"},
		{"bad line number", "file_path,line_number,before,after,status\ncalc.py,NaN, + , - ,Caught\n"},
		{"bad status", "file_path,line_number,before,after,status\ncalc.py,1, + , - ,Exploded\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".pymute_cache.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := NewCacheStore().Load(path)
			assert.ErrorIs(t, err, ErrCorruptCache)
		})
	}
}

func TestCacheStore_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pymute_cache.csv")

	require.NoError(t, NewCacheStore().Save(path, cacheFixture()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".pymute_cache.csv", entries[0].Name())
}
