package domain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pymute.dev/pkg/pymute/internal/adapter"
	m "pymute.dev/pkg/pymute/internal/model"
)

// fakeOracle judges mutants with an injected function.
type fakeOracle struct {
	mu   sync.Mutex
	runs int
	run  func(ctx context.Context, workDir string) (bool, error)
}

func (o *fakeOracle) Run(ctx context.Context, workDir string) (bool, error) {
	o.mu.Lock()
	o.runs++
	o.mu.Unlock()

	return o.run(ctx, workDir)
}

func (o *fakeOracle) runCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.runs
}

// contentOracle passes unless the target file carries the mutation marker.
func contentOracle(file, marker string) *fakeOracle {
	return &fakeOracle{
		run: func(_ context.Context, workDir string) (bool, error) {
			content, err := os.ReadFile(filepath.Join(workDir, file))
			if err != nil {
				return false, err
			}

			return !strings.Contains(string(content), marker), nil
		},
	}
}

// eventRecorder counts observer events; safe for concurrent workers.
type eventRecorder struct {
	mu         sync.Mutex
	started    []m.Mutant
	classified []m.Outcome
}

func (r *eventRecorder) MutantStarted(mutant m.Mutant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.started = append(r.started, mutant)
}

func (r *eventRecorder) MutantClassified(outcome m.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.classified = append(r.classified, outcome)
}

func engineFixture(t *testing.T) (string, []m.Mutant) {
	t.Helper()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "calc.py"), "x = 1 + 2\ny = 3 * 4\n")

	mutants := []m.Mutant{
		{
			FilePath:     filepath.Join(root, "calc.py"),
			LineNumber:   1,
			Before:       " + ",
			After:        " - ",
			OriginalLine: "x = 1 + 2",
			Status:       m.StatusNotRun,
		},
		{
			FilePath:     filepath.Join(root, "calc.py"),
			LineNumber:   2,
			Before:       " * ",
			After:        " / ",
			OriginalLine: "y = 3 * 4",
			Status:       m.StatusNotRun,
		},
	}

	return root, mutants
}

func outcomeByLine(t *testing.T, outcomes []m.Outcome, line int) m.Outcome {
	t.Helper()

	for _, outcome := range outcomes {
		if outcome.Mutant.LineNumber == line {
			return outcome
		}
	}

	t.Fatalf("no outcome for line %d", line)

	return m.Outcome{}
}

func TestEngine_Isolated_Classification(t *testing.T) {
	root, mutants := engineFixture(t)

	// A suite that only notices the subtraction mutant.
	oracle := contentOracle("calc.py", " - ")
	recorder := &eventRecorder{}
	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, recorder, ModeIsolated, 2)

	outcomes, err := engine.Run(context.Background(), mutants, root)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	caught := outcomeByLine(t, outcomes, 1)
	require.NoError(t, caught.Err)
	assert.Equal(t, m.StatusCaught, caught.Status)

	missed := outcomeByLine(t, outcomes, 2)
	require.NoError(t, missed.Err)
	assert.Equal(t, m.StatusMissed, missed.Status)

	assert.Equal(t, 2, oracle.runCount())

	// The real tree was never touched.
	content, err := os.ReadFile(filepath.Join(root, "calc.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1 + 2\ny = 3 * 4\n", string(content))
}

func TestEngine_Isolated_CleansUpTempDirs(t *testing.T) {
	root, mutants := engineFixture(t)

	// Point temp-dir creation somewhere observable. The fixture dirs were
	// created first, so this directory only ever holds mutant copies.
	tmpHome := t.TempDir()
	t.Setenv("TMPDIR", tmpHome)

	oracle := contentOracle("calc.py", " - ")
	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, &eventRecorder{}, ModeIsolated, 1)

	_, err := engine.Run(context.Background(), mutants, root)
	require.NoError(t, err)

	entries, err := os.ReadDir(tmpHome)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEngine_Isolated_SpawnFailureIsErrOutcome(t *testing.T) {
	root, mutants := engineFixture(t)

	spawnErr := errors.New("exec: \"python\": executable file not found")
	oracle := &fakeOracle{run: func(context.Context, string) (bool, error) {
		return false, spawnErr
	}}

	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, &eventRecorder{}, ModeIsolated, 1)

	outcomes, err := engine.Run(context.Background(), mutants[:1], root)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.ErrorIs(t, outcomes[0].Err, spawnErr)
	assert.Equal(t, m.StatusNotRun, outcomes[0].Status)
}

func TestEngine_Isolated_EmitsEventPairs(t *testing.T) {
	root, mutants := engineFixture(t)

	oracle := contentOracle("calc.py", " - ")
	recorder := &eventRecorder{}
	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, recorder, ModeIsolated, 2)

	_, err := engine.Run(context.Background(), mutants, root)
	require.NoError(t, err)

	assert.Len(t, recorder.started, 2)
	assert.Len(t, recorder.classified, 2)
}

func TestEngine_InPlace_AppliesAndReverts(t *testing.T) {
	root, mutants := engineFixture(t)

	var seen []string

	oracle := &fakeOracle{run: func(_ context.Context, workDir string) (bool, error) {
		content, err := os.ReadFile(filepath.Join(workDir, "calc.py"))
		if err != nil {
			return false, err
		}

		seen = append(seen, string(content))

		return !strings.Contains(string(content), " - "), nil
	}}

	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, &eventRecorder{}, ModeInPlace, 1)

	outcomes, err := engine.Run(context.Background(), mutants, root)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// The oracle observed the mutated tree in place.
	require.Len(t, seen, 2)
	assert.Contains(t, seen[0], "x = 1 - 2")
	assert.Contains(t, seen[1], "y = 3 / 4")

	// And every mutant was reverted afterwards.
	content, err := os.ReadFile(filepath.Join(root, "calc.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1 + 2\ny = 3 * 4\n", string(content))

	// The lock was released.
	_, err = os.Stat(filepath.Join(root, ".pymute.lock"))
	assert.True(t, os.IsNotExist(err))
}

func TestEngine_InPlace_RefusesWhenLocked(t *testing.T) {
	root, mutants := engineFixture(t)
	writeTestFile(t, filepath.Join(root, ".pymute.lock"), "")

	oracle := contentOracle("calc.py", " - ")
	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, &eventRecorder{}, ModeInPlace, 1)

	_, err := engine.Run(context.Background(), mutants, root)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Zero(t, oracle.runCount())
}

func TestNewEngine_ClampsWorkers(t *testing.T) {
	root, mutants := engineFixture(t)

	oracle := contentOracle("calc.py", " - ")
	engine := NewEngine(adapter.NewLocalSourceFSAdapter(), oracle, &eventRecorder{}, ModeIsolated, 0)

	outcomes, err := engine.Run(context.Background(), mutants, root)
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
}
