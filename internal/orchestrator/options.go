// Package orchestrator drives a simulation series end to end: grid
// expansion, resource estimation, run directory lifecycle and batched
// scheduler submission.
package orchestrator

import (
	"github.com/matzegoebel/run-wrf/internal/lifecycle"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// Mode selects the orchestration phase.
type Mode int

const (
	// ModeInit creates and initializes the run directories.
	ModeInit Mode = iota
	// ModeRun submits the simulations.
	ModeRun
	// ModeRestart continues incomplete simulations from their newest
	// restart files.
	ModeRestart
)

// Options are the command-line switches of one invocation.
type Options struct {
	Mode            Mode
	Outdir          string // output subdirectory override, init only
	Exist           lifecycle.ExistsPolicy
	Debug           bool
	UseScheduler    bool
	CheckOnly       bool // build commands without executing anything
	Pool            bool
	Mail            string // mail event mask: n, b, e, a
	Wait            bool
	NoNamelistCheck bool
	TestRun         bool
	Verbose         bool
}

// Validate rejects the flag combinations that cannot work.
func (o *Options) Validate() error {
	if o.Wait && o.UseScheduler {
		return &FlagError{Reason: "waiting for batch jobs is not yet implemented"}
	}
	if o.TestRun && !o.UseScheduler {
		return &FlagError{Reason: "test runs without job scheduler do not make sense"}
	}
	if o.TestRun && o.Pool {
		return &FlagError{Reason: "do not use pooling for test runs"}
	}
	if o.Outdir != "" && o.Mode != ModeInit {
		utils.PrintWarning("option -o ignored when not in initialization mode")
	}
	return nil
}
