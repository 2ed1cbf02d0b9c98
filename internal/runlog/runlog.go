// Package runlog mines timing, tiling and memory statistics from the
// log files a finished (or running) simulation leaves behind.
package runlog

import (
	"errors"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// LogName is the model log file name inside a run directory.
const LogName = "run.log"

// ErrLogNotFound indicates the run directory has no log file at all.
// This is distinct from a log that exists but has no timing lines yet.
var ErrLogNotFound = errors.New("no log file found")

// Timing holds the per-step timing statistics and the MPI tiling
// recovered from one run log.
type Timing struct {
	NX, NY  int     // MPI tasks per axis (1 if the run was serial)
	Steps   int     // number of timing samples found
	MeanSec float64 // mean elapsed seconds per step
	SDSec   float64 // standard deviation of elapsed seconds per step
}

// HasSamples reports whether any timing lines were found.
func (t *Timing) HasSamples() bool { return t != nil && t.Steps > 0 }

var (
	ntasksXRe = regexp.MustCompile(`X\s*(\d+)\s*,`)
	ntasksYRe = regexp.MustCompile(`Y\s*(\d+)\s*$`)
)

// Parse reads run.log in runDir and extracts per-step timings and the
// task tiling. Returns ErrLogNotFound if the log file is absent. A log
// without timing lines yields a Timing with Steps == 0.
func Parse(runDir string) (*Timing, error) {
	path := filepath.Join(runDir, LogName)
	if !utils.FileExists(path) {
		return nil, ErrLogNotFound
	}
	lines, err := utils.ReadLines(path)
	if err != nil {
		return nil, err
	}

	t := &Timing{NX: 1, NY: 1}
	var samples []float64
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Timing for main"):
			// "Timing for main: time ... on domain 1: 0.23350 elapsed seconds."
			idx := strings.LastIndex(line, ":")
			if idx < 0 {
				continue
			}
			rest := strings.TrimSpace(line[idx+1:])
			end := strings.Index(rest, "elapsed")
			if end < 0 {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 64)
			if err != nil {
				continue
			}
			samples = append(samples, v)
		case strings.Contains(line, "Ntasks"):
			if m := ntasksXRe.FindStringSubmatch(line); m != nil {
				t.NX, _ = strconv.Atoi(m[1])
			}
			if m := ntasksYRe.FindStringSubmatch(strings.TrimRight(line, " ")); m != nil {
				t.NY, _ = strconv.Atoi(m[1])
			}
		}
	}

	t.Steps = len(samples)
	if t.Steps > 0 {
		sum := 0.0
		for _, s := range samples {
			sum += s
		}
		t.MeanSec = sum / float64(t.Steps)
		varSum := 0.0
		for _, s := range samples {
			d := s - t.MeanSec
			varSum += d * d
		}
		t.SDSec = math.Sqrt(varSum / float64(t.Steps))
	}
	return t, nil
}

// Complete reports whether the log in runDir contains the completion
// marker for the given end time (formatted %Y-%m-%d_%H:%M:%S).
func Complete(runDir, endTime string) bool {
	lines, err := utils.ReadLines(filepath.Join(runDir, LogName))
	if err != nil {
		return false
	}
	marker := "d01 " + endTime + " wrf: SUCCESS COMPLETE WRF"
	for _, line := range lines {
		if strings.TrimSpace(line) == marker {
			return true
		}
	}
	return false
}
