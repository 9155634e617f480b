package adapter

import (
	"context"
	"errors"
	"io"
	"os/exec"

	m "pymute.dev/pkg/pymute/internal/model"
)

// OracleAdapter abstracts the external test command. Its sole contract is
// the process exit status: a zero exit means the tests passed (the mutant
// went undetected), a nonzero exit means the tests failed (the mutant was
// caught). A non-nil error means the oracle could not be run at all and must
// be reported separately from either verdict.
type OracleAdapter interface {
	Run(ctx context.Context, workDir string) (passed bool, err error)
}

// TestOracle invokes pytest or tox as a black-box pass/fail oracle.
type TestOracle struct {
	runner      m.Runner
	tests       string
	environment string
	outputLevel m.OutputLevel

	// stdout/stderr receive the oracle's own output when the output level
	// is process; otherwise the output is discarded.
	stdout io.Writer
	stderr io.Writer
}

// NewTestOracle builds an oracle for the validated runner configuration.
// tests is the pytest test path selector (ignored by tox); environment is
// the optional tox environment (ignored by pytest). When environment is
// empty, tox falls back to its own default resolution.
func NewTestOracle(runner m.Runner, tests, environment string, level m.OutputLevel, stdout, stderr io.Writer) *TestOracle {
	return &TestOracle{
		runner:      runner,
		tests:       tests,
		environment: environment,
		outputLevel: level,
		stdout:      stdout,
		stderr:      stderr,
	}
}

// Run executes the oracle with workDir as working directory and classifies
// its exit status.
func (o *TestOracle) Run(ctx context.Context, workDir string) (bool, error) {
	cmd := o.command(ctx, workDir)

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}

	// Spawn failure (command missing, not executable): not a verdict.
	return false, err
}

func (o *TestOracle) command(ctx context.Context, workDir string) *exec.Cmd {
	var cmd *exec.Cmd

	switch o.runner {
	case m.RunnerTox:
		if o.environment != "" {
			cmd = exec.CommandContext(ctx, "tox", "-e", o.environment)
		} else {
			cmd = exec.CommandContext(ctx, "tox")
		}
	default:
		cmd = exec.CommandContext(ctx, "python", "-B", "-m", "pytest", o.tests, "-x")
	}

	cmd.Dir = workDir

	if o.outputLevel == m.OutputProcess {
		cmd.Stdout = o.stdout
		cmd.Stderr = o.stderr
	}

	return cmd
}
