package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pymute.dev/pkg/pymute/internal/domain"
)

// cleanCmd represents the clean command.
var cleanCmd = newCleanCmd()

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [root]",
		Short: "Remove the result cache and run summary",
		Long: `Delete the mutant result cache and the run summary from the project root.
The next run starts from a fresh discovery.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := resolveWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.Clean(cmd.Context(), domain.CleanArgs{
				Root:        rootArg(args),
				CacheFile:   viper.GetString(cacheFileConfigKey),
				SummaryFile: viper.GetString(summaryFileConfigKey),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
