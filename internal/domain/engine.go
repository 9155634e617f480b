package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"pymute.dev/pkg/pymute/internal/adapter"
	m "pymute.dev/pkg/pymute/internal/model"
)

// Mode selects how a mutant is materialized for the oracle.
type Mode int

const (
	// ModeIsolated runs every mutant in a disposable full copy of the
	// project tree. Safe for parallel execution.
	ModeIsolated Mode = iota
	// ModeInPlace mutates the real tree and reverts afterwards. Weaker
	// isolation: a crash between apply and revert leaves the tree mutated.
	ModeInPlace
)

// lockFileName guards in-place batches against overlapping runs.
const lockFileName = ".pymute.lock"

// ErrLocked is returned when an in-place batch finds another one holding the
// project lock.
var ErrLocked = errors.New("in-place run already in progress")

// Observer receives engine progress events. It is injected so rendering is
// fully decoupled from execution; events have no effect on correctness.
type Observer interface {
	MutantStarted(mutant m.Mutant)
	MutantClassified(outcome m.Outcome)
}

// Engine materializes mutants, runs the oracle against each and classifies
// the result.
type Engine interface {
	Run(ctx context.Context, mutants []m.Mutant, root string) ([]m.Outcome, error)
}

type engine struct {
	fs       adapter.SourceFSAdapter
	oracle   adapter.OracleAdapter
	observer Observer
	mode     Mode

	// workers bounds isolated-mode parallelism. It is fixed at
	// construction so several independently configured engines can coexist
	// in one process.
	workers int
}

// NewEngine constructs an Engine. workers below one is treated as one.
func NewEngine(fs adapter.SourceFSAdapter, oracle adapter.OracleAdapter, observer Observer, mode Mode, workers int) Engine {
	if workers < 1 {
		workers = 1
	}

	return &engine{
		fs:       fs,
		oracle:   oracle,
		observer: observer,
		mode:     mode,
		workers:  workers,
	}
}

// Run executes the batch to completion. Per-mutant failures are folded into
// their outcome; only batch-level failures (the in-place lock) return an
// error. Completion order is unconstrained.
func (e *engine) Run(ctx context.Context, mutants []m.Mutant, root string) ([]m.Outcome, error) {
	if e.mode == ModeInPlace {
		return e.runInPlace(ctx, mutants, root)
	}

	return e.runIsolated(ctx, mutants, root)
}

func (e *engine) runIsolated(ctx context.Context, mutants []m.Mutant, root string) ([]m.Outcome, error) {
	outcomes := make([]m.Outcome, 0, len(mutants))

	var outcomesMutex sync.Mutex

	var group errgroup.Group
	group.SetLimit(e.workers)

	for _, mutant := range mutants {
		currentMutant := mutant

		group.Go(func() error {
			e.observer.MutantStarted(currentMutant)

			outcome := e.runOneIsolated(ctx, currentMutant, root)

			e.observer.MutantClassified(outcome)

			outcomesMutex.Lock()
			outcomes = append(outcomes, outcome)
			outcomesMutex.Unlock()

			return nil
		})
	}

	_ = group.Wait()

	return outcomes, nil
}

// runOneIsolated copies the tree into a private temporary directory, applies
// the mutant there and lets the oracle judge it. The directory is released
// on every exit path.
func (e *engine) runOneIsolated(ctx context.Context, mutant m.Mutant, root string) m.Outcome {
	tmpDir, err := e.fs.CreateTempDir("pymute-mutant-*")
	if err != nil {
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: fmt.Errorf("failed to create temp dir: %w", err)}
	}

	defer func() {
		if err := e.fs.RemoveAll(tmpDir); err != nil {
			slog.Error("failed to clean up temp dir", "tmpDir", tmpDir, "error", err)
		}
	}()

	if err := e.fs.CopyDir(root, tmpDir); err != nil {
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: fmt.Errorf("failed to copy project root: %w", err)}
	}

	if err := mutant.ApplyInCopy(root, tmpDir); err != nil {
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: err}
	}

	return e.classify(ctx, mutant, tmpDir)
}

func (e *engine) runInPlace(ctx context.Context, mutants []m.Mutant, root string) ([]m.Outcome, error) {
	unlock, err := acquireLock(root)
	if err != nil {
		return nil, err
	}

	defer unlock()

	outcomes := make([]m.Outcome, 0, len(mutants))

	for _, mutant := range mutants {
		e.observer.MutantStarted(mutant)

		outcome := e.runOneInPlace(ctx, mutant, root)

		e.observer.MutantClassified(outcome)

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (e *engine) runOneInPlace(ctx context.Context, mutant m.Mutant, root string) m.Outcome {
	if err := mutant.Apply(); err != nil {
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: err}
	}

	outcome := e.classify(ctx, mutant, root)

	if err := mutant.Revert(); err != nil {
		slog.Error("failed to revert mutant", "mutant", mutant.String(), "error", err)
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: fmt.Errorf("failed to revert mutant: %w", err)}
	}

	return outcome
}

// classify invokes the oracle and maps its exit status onto a verdict:
// exit 0 means the tests passed and the mutant was Missed, nonzero means
// they failed and the mutant was Caught. A spawn failure stays an error.
func (e *engine) classify(ctx context.Context, mutant m.Mutant, workDir string) m.Outcome {
	passed, err := e.oracle.Run(ctx, workDir)
	if err != nil {
		return m.Outcome{Mutant: mutant, Status: mutant.Status, Err: fmt.Errorf("failed to run test oracle: %w", err)}
	}

	status := m.StatusCaught
	if passed {
		status = m.StatusMissed
	}

	mutant.Status = status

	return m.Outcome{Mutant: mutant, Status: status}
}

// acquireLock takes the exclusive in-place lock for the project tree. The
// lock is a plain O_EXCL file; a stale one left by a crash must be removed
// manually, which matches the documented crash risk of in-place mode.
func acquireLock(root string) (func(), error) {
	lockPath := filepath.Join(root, lockFileName)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s exists", ErrLocked, lockPath)
		}

		return nil, fmt.Errorf("failed to take in-place lock %s: %w", lockPath, err)
	}

	_ = file.Close()

	return func() {
		if err := os.Remove(lockPath); err != nil {
			slog.Error("failed to release in-place lock", "lockPath", lockPath, "error", err)
		}
	}, nil
}
