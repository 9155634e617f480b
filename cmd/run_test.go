package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pymute.dev/pkg/pymute/internal/domain"
	m "pymute.dev/pkg/pymute/internal/model"
)

// fakeWorkflow captures the arguments the commands build.
type fakeWorkflow struct {
	testArgs  *domain.TestArgs
	listArgs  *domain.ListArgs
	cleanArgs *domain.CleanArgs
}

func (f *fakeWorkflow) Test(_ context.Context, args domain.TestArgs) error {
	f.testArgs = &args
	return nil
}

func (f *fakeWorkflow) List(_ context.Context, args domain.ListArgs) error {
	f.listArgs = &args
	return nil
}

func (f *fakeWorkflow) Clean(_ context.Context, args domain.CleanArgs) error {
	f.cleanArgs = &args
	return nil
}

func newTestRootCmd(t *testing.T, fake *fakeWorkflow) *cobra.Command {
	t.Helper()

	workflowOverride = fake
	t.Cleanup(func() { workflowOverride = nil })

	cmd := baseRootCmd()
	configureRootFlags(cmd)
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd
}

func TestRunCmd_Defaults(t *testing.T) {
	fake := &fakeWorkflow{}
	cmd := newTestRootCmd(t, fake)

	cmd.SetArgs([]string{"run"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, fake.testArgs)
	assert.Equal(t, ".", fake.testArgs.Root)
	assert.Equal(t, "**/*.py", fake.testArgs.Modules)
	assert.Equal(t, m.AllCategories, fake.testArgs.Categories)
	assert.Equal(t, 0, fake.testArgs.MaxMutants)
	assert.Equal(t, int64(42), fake.testArgs.Seed)
	assert.Equal(t, ".pymute_cache.csv", fake.testArgs.CacheFile)
	assert.Equal(t, ".pymute_summary.yaml", fake.testArgs.SummaryFile)
	assert.True(t, fake.testArgs.UseCache)
	assert.False(t, fake.testArgs.SkipResolved)
}

func TestRunCmd_Flags(t *testing.T) {
	fake := &fakeWorkflow{}
	cmd := newTestRootCmd(t, fake)

	cmd.SetArgs([]string{
		"run",
		"--max-mutants", "5",
		"--seed", "7",
		"--skip-resolved",
		"--no-cache",
		"--categories", "mathops,numbers",
		"/tmp/project",
	})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, fake.testArgs)
	assert.Equal(t, "/tmp/project", fake.testArgs.Root)
	assert.Equal(t, 5, fake.testArgs.MaxMutants)
	assert.Equal(t, int64(7), fake.testArgs.Seed)
	assert.True(t, fake.testArgs.SkipResolved)
	assert.False(t, fake.testArgs.UseCache)
	assert.Equal(t, []m.Category{m.CategoryMathOps, m.CategoryNumbers}, fake.testArgs.Categories)
}

func TestRunCmd_RejectsUnknownCategory(t *testing.T) {
	fake := &fakeWorkflow{}
	cmd := newTestRootCmd(t, fake)

	cmd.SetArgs([]string{"run", "--categories", "typos"})
	err := cmd.Execute()

	assert.Error(t, err)
	assert.Nil(t, fake.testArgs)
}

func TestListCmd(t *testing.T) {
	fake := &fakeWorkflow{}
	cmd := newTestRootCmd(t, fake)

	cmd.SetArgs([]string{"list", "--no-cache", "/tmp/project"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, fake.listArgs)
	assert.Equal(t, "/tmp/project", fake.listArgs.Root)
	assert.Equal(t, "**/*.py", fake.listArgs.Modules)
	assert.False(t, fake.listArgs.UseCache)
	assert.Nil(t, fake.testArgs)
}

func TestCleanCmd(t *testing.T) {
	fake := &fakeWorkflow{}
	cmd := newTestRootCmd(t, fake)

	cmd.SetArgs([]string{"clean", "/tmp/project"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, fake.cleanArgs)
	assert.Equal(t, "/tmp/project", fake.cleanArgs.Root)
	assert.Equal(t, ".pymute_cache.csv", fake.cleanArgs.CacheFile)
	assert.Equal(t, ".pymute_summary.yaml", fake.cleanArgs.SummaryFile)
}
