// Package cmd provides the root command and CLI setup for pymute.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pymute.dev/pkg/pymute/internal/adapter"
	"pymute.dev/pkg/pymute/internal/controller"
	"pymute.dev/pkg/pymute/internal/domain"
	m "pymute.dev/pkg/pymute/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var cacheStore adapter.CacheStore
var summaryStore adapter.SummaryStore

// workflowOverride replaces the wired workflow when set. Used by tests to
// capture the arguments the commands build.
var workflowOverride domain.Workflow

var modulesFlag string
var categoriesFlag []string
var maxMutantsFlag int
var seedFlag int64
var cacheFileFlag string
var summaryFileFlag string
var noCacheFlag bool
var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	cacheStore = adapter.NewCacheStore()
	summaryStore = adapter.NewSummaryStore()
}

const rootLongDescription = `Pymute is a mutation testing tool for Python projects. It introduces small
textual changes (mutants) into your code and runs your test suite against
each one: a mutant your tests fail on is caught, a mutant your tests pass on
has slipped through.

The project root is given as a positional argument and defaults to the
current directory. Results are cached in a CSV file inside the project root
so repeated runs can pick up where they left off.`

const runLongDescription = `Run mutation testing for the given project root (default: current directory).

Every discovered mutant is applied to a disposable copy of the project and
judged by the exit status of the test runner (pytest or tox). Use --in-place
to mutate the real tree instead, which is faster but requires exclusive
access to the project.`

const listLongDescription = `List the mutants that would be run, including their cached verdicts, without
executing anything.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pymute",
		Short: "Python mutation testing tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&modulesFlag, modulesFlagName, "m", viper.GetString(modulesConfigKey), "glob selecting files to mutate, relative to the project root")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(modulesFlagName), modulesConfigKey)

	cmd.PersistentFlags().StringSliceVarP(&categoriesFlag, categoriesFlagName, "c", viper.GetStringSlice(categoriesConfigKey), "mutation categories to enable (default: all)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(categoriesFlagName), categoriesConfigKey)

	cmd.PersistentFlags().StringVar(&cacheFileFlag, cacheFileFlagName, viper.GetString(cacheFileConfigKey), "result cache file, relative to the project root")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(cacheFileFlagName), cacheFileConfigKey)

	cmd.PersistentFlags().StringVar(&summaryFileFlag, summaryFileFlagName, viper.GetString(summaryFileConfigKey), "run summary file, relative to the project root (empty to disable)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(summaryFileFlagName), summaryFileConfigKey)

	cmd.PersistentFlags().IntVar(&maxMutantsFlag, maxMutantsFlagName, viper.GetInt(maxMutantsConfigKey), "cap the number of mutants via seeded subsampling (0 = no cap)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxMutantsFlagName), maxMutantsConfigKey)

	cmd.PersistentFlags().Int64Var(&seedFlag, seedFlagName, viper.GetInt64(seedConfigKey), "seed for mutant subsampling")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(seedFlagName), seedConfigKey)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "ignore the result cache (neither read nor written)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default "+defaultLogFilename+")")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// resolveWorkflow validates the runtime configuration once and wires the
// full use-case stack for it. The closed sets (runner, output level) are
// rejected here so the domain layer never sees an invalid value.
func resolveWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	if workflowOverride != nil {
		return workflowOverride, nil
	}

	runner, err := m.ParseRunner(viper.GetString(runnerConfigKey))
	if err != nil {
		return nil, err
	}

	level, err := m.ParseOutputLevel(viper.GetString(outputLevelConfigKey))
	if err != nil {
		return nil, err
	}

	ui := controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()), level)

	oracle := adapter.NewTestOracle(
		runner,
		viper.GetString(testsConfigKey),
		viper.GetString(environmentConfigKey),
		level,
		cmd.OutOrStdout(),
		cmd.ErrOrStderr(),
	)

	scanner := domain.NewScanner(
		fsAdapter,
		viper.GetString(testPrefixConfigKey),
		viper.GetString(testSuffixConfigKey),
	)

	mode := domain.ModeIsolated
	if viper.GetBool(inPlaceConfigKey) {
		mode = domain.ModeInPlace
	}

	engine := domain.NewEngine(fsAdapter, oracle, ui, mode, viper.GetInt(parallelConfigKey))

	return domain.NewWorkflow(scanner, engine, cacheStore, summaryStore, fsAdapter, ui), nil
}

// rootArg extracts the optional positional project root.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return "."
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
