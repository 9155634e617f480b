package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pymute.dev/pkg/pymute/internal/domain"
	m "pymute.dev/pkg/pymute/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [root]",
		Short: "List mutants without running them",
		Long:  listLongDescription,
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

			return wf.List(cmd.Context(), domain.ListArgs{
				Root:       rootArg(args),
				Modules:    viper.GetString(modulesConfigKey),
				Categories: categories,
				MaxMutants: viper.GetInt(maxMutantsConfigKey),
				Seed:       viper.GetInt64(seedConfigKey),
				CacheFile:  viper.GetString(cacheFileConfigKey),
				UseCache:   !viper.GetBool(noCacheFlagName),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
