// Package lifecycle tracks run directories through initialization,
// execution and restart. State is always derived from filesystem
// markers, never cached, so external modifications are picked up.
package lifecycle

import (
	"path/filepath"

	"github.com/matzegoebel/run-wrf/internal/runlog"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// InputFileName is the marker written by a successful initialization.
const InputFileName = "wrfinput_d01"

// State is the lifecycle position of one run directory.
type State int

const (
	// StateMissing means the run directory does not exist.
	StateMissing State = iota
	// StateUnprepared means the directory exists but initialization
	// did not complete.
	StateUnprepared
	// StateInitialized means the input file is present and the run can
	// be submitted.
	StateInitialized
	// StateComplete means the run log carries the completion marker
	// for the configured end time.
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUnprepared:
		return "unprepared"
	case StateInitialized:
		return "initialized"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Detect derives the state of runDir for a simulation ending at
// endTime (WRF time format).
func Detect(runDir, endTime string) State {
	if !utils.DirExists(runDir) {
		return StateMissing
	}
	if !utils.FileExists(filepath.Join(runDir, InputFileName)) {
		return StateUnprepared
	}
	if runlog.Complete(runDir, endTime) {
		return StateComplete
	}
	return StateInitialized
}
