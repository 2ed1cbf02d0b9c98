package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/config"
	"github.com/matzegoebel/run-wrf/internal/orchestrator"
	"github.com/matzegoebel/run-wrf/internal/scheduler"
	"github.com/matzegoebel/run-wrf/internal/utils"
	"github.com/spf13/cobra"
)

var (
	configFile      string
	verboseMode     bool
	quietMode       bool
	debugMode       bool
	checkOnly       bool
	mailMask        string
	noNamelistCheck bool
)

var rootCmd = &cobra.Command{
	Use:           "run-wrf",
	Short:         "run-wrf: configure, initialize and submit batches of idealized WRF simulations on HPC clusters.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verboseMode {
			utils.VerboseMode = true
		}
		if quietMode {
			utils.QuietMode = true
		}
		if err := config.Load(configFile); err != nil {
			return err
		}
		utils.PrintDebug("Config file: %s", configFile)
		utils.PrintDebug("Run path: %s", config.Global.RunPath)
		utils.PrintDebug("Output path: %s", config.Global.OutPath)
		utils.PrintDebug("Build path: %s", config.Global.BuildPath)
		utils.PrintDebug("Job scheduler: %s", config.Global.JobScheduler)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced. For submission
		// errors print the captured scheduler output and exit non-zero.
		if se, ok := err.(*scheduler.SubmissionError); ok {
			utils.PrintError("%v", se)
			if out := strings.TrimSpace(se.Output); out != "" {
				fmt.Fprintln(os.Stderr, out)
			}
			os.Exit(1)
		}
		utils.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Configuration file of the simulation series")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational messages, keep errors and warnings")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Use the debug build of the model")
	rootCmd.PersistentFlags().BoolVarP(&checkOnly, "check", "t", false, "Only build the commands, do not execute or submit anything")
	rootCmd.PersistentFlags().StringVarP(&mailMask, "mail", "m", "ea", "When the scheduler sends mail: combination of b (begin), e (end), a (abort) or n (never)")
	rootCmd.PersistentFlags().BoolVarP(&noNamelistCheck, "no-namelist-check", "n", false, "Skip the sanity check of the namelist parameters")
}

// runOrchestrator fills the shared options from the persistent flags
// and runs the selected mode.
func runOrchestrator(opts orchestrator.Options) error {
	opts.Debug = debugMode
	opts.CheckOnly = checkOnly
	opts.Mail = mailMask
	opts.NoNamelistCheck = noNamelistCheck
	opts.Verbose = verboseMode
	return orchestrator.New(&config.Global, opts).Run()
}
