package cmd

import (
	"github.com/matzegoebel/run-wrf/internal/lifecycle"
	"github.com/matzegoebel/run-wrf/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	initOutdir       string
	initExist        string
	initUseScheduler bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and initialize the run directories of all configurations",
	Long: `Expand the parameter grid of the config file and run the ideal-case
preprocessor for every configuration and repetition. Each run gets its
own directory below run_path, ready for submission with 'run-wrf run'.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		exist, err := lifecycle.ParseExistsPolicy(initExist)
		if err != nil {
			return err
		}
		return runOrchestrator(orchestrator.Options{
			Mode:         orchestrator.ModeInit,
			Outdir:       initOutdir,
			Exist:        exist,
			UseScheduler: initUseScheduler,
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initOutdir, "outdir", "o", "", "Subdirectory of outpath for the simulation output")
	initCmd.Flags().StringVarP(&initExist, "exist", "e", "s", "What to do if the run directory already exists: skip (s), overwrite (o) or backup (b)")
	initCmd.Flags().BoolVarP(&initUseScheduler, "use-job-scheduler", "j", false, "Submit the initialization through the job scheduler")
}
