package cmd

import (
	"github.com/matzegoebel/run-wrf/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	restartUseScheduler bool
	restartPool         bool
	restartWait         bool
)

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Continue incomplete simulations from their newest restart files",
	Long: `For every incomplete simulation, move the previous output segments
aside, patch the namelist to restart from the newest restart file and
resubmit the run. Already completed simulations are skipped.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrchestrator(orchestrator.Options{
			Mode:         orchestrator.ModeRestart,
			UseScheduler: restartUseScheduler,
			Pool:         restartPool,
			Wait:         restartWait,
		})
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
	restartCmd.Flags().BoolVarP(&restartUseScheduler, "use-job-scheduler", "j", false, "Submit the runs through the job scheduler")
	restartCmd.Flags().BoolVarP(&restartPool, "pool", "p", false, "Gather jobs until pool_size slots are reached and submit them together")
	restartCmd.Flags().BoolVarP(&restartWait, "wait", "w", false, "Wait until each job is finished before starting the next")
}
