package cmd

import (
	"github.com/matzegoebel/run-wrf/internal/lifecycle"
	"github.com/matzegoebel/run-wrf/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	runExist        string
	runUseScheduler bool
	runPool         bool
	runWait         bool
	runTestRun      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Submit the initialized simulations",
	Long: `Submit every initialized configuration and repetition, either
directly on the local machine or through the configured job scheduler.
With pooling enabled, several small jobs share one scheduler submission
until the slot capacity (pool_size) is reached.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		exist, err := lifecycle.ParseExistsPolicy(runExist)
		if err != nil {
			return err
		}
		return runOrchestrator(orchestrator.Options{
			Mode:         orchestrator.ModeRun,
			Exist:        exist,
			UseScheduler: runUseScheduler,
			Pool:         runPool,
			Wait:         runWait,
			TestRun:      runTestRun,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runExist, "exist", "e", "s", "What to do if output files already exist: skip (s), overwrite (o) or backup (b)")
	runCmd.Flags().BoolVarP(&runUseScheduler, "use-job-scheduler", "j", false, "Submit the runs through the job scheduler")
	runCmd.Flags().BoolVarP(&runPool, "pool", "p", false, "Gather jobs until pool_size slots are reached and submit them together")
	runCmd.Flags().BoolVarP(&runWait, "wait", "w", false, "Wait until each job is finished before starting the next")
	runCmd.Flags().BoolVarP(&runTestRun, "test-run", "T", false, "Do short test runs on the cluster to determine the required runtime and virtual memory")
}
