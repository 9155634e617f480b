package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pymute.dev/pkg/pymute/internal/domain"
	m "pymute.dev/pkg/pymute/internal/model"
)

var runParallelFlag int
var runInPlaceFlag bool
var runSkipResolvedFlag bool
var runTestsFlag string
var runRunnerFlag string
var runEnvironmentFlag string
var runOutputLevelFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := m.ParseCategories(viper.GetStringSlice(categoriesConfigKey))
			if err != nil {
				return err
			}

			wf, err := resolveWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Test(cmd.Context(), domain.TestArgs{
				Root:         rootArg(args),
				Modules:      viper.GetString(modulesConfigKey),
				Categories:   categories,
				MaxMutants:   viper.GetInt(maxMutantsConfigKey),
				Seed:         viper.GetInt64(seedConfigKey),
				CacheFile:    viper.GetString(cacheFileConfigKey),
				SummaryFile:  viper.GetString(summaryFileConfigKey),
				UseCache:     !viper.GetBool(noCacheFlagName),
				SkipResolved: viper.GetBool(skipResolvedConfigKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel workers (isolated mode only)")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.Flags().BoolVar(&runInPlaceFlag, inPlaceFlagName, viper.GetBool(inPlaceConfigKey), "mutate the project tree directly instead of per-mutant copies")
	bindFlagToConfig(cmd.Flags().Lookup(inPlaceFlagName), inPlaceConfigKey)

	cmd.Flags().BoolVar(&runSkipResolvedFlag, skipResolvedFlagName, viper.GetBool(skipResolvedConfigKey), "run only mutants without a cached verdict")
	bindFlagToConfig(cmd.Flags().Lookup(skipResolvedFlagName), skipResolvedConfigKey)

	cmd.Flags().StringVarP(&runTestsFlag, testsFlagName, "t", viper.GetString(testsConfigKey), "pytest test path selector")
	bindFlagToConfig(cmd.Flags().Lookup(testsFlagName), testsConfigKey)

	cmd.Flags().StringVarP(&runRunnerFlag, runnerFlagName, "r", viper.GetString(runnerConfigKey), "test runner: pytest or tox")
	bindFlagToConfig(cmd.Flags().Lookup(runnerFlagName), runnerConfigKey)

	cmd.Flags().StringVarP(&runEnvironmentFlag, environmentFlagName, "e", viper.GetString(environmentConfigKey), "tox environment to run")
	bindFlagToConfig(cmd.Flags().Lookup(environmentFlagName), environmentConfigKey)

	cmd.Flags().StringVarP(&runOutputLevelFlag, outputLevelFlagName, "o", viper.GetString(outputLevelConfigKey), "output level: missed, caught or process")
	bindFlagToConfig(cmd.Flags().Lookup(outputLevelFlagName), outputLevelConfigKey)
}
