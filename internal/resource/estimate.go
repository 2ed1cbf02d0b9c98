package resource

import (
	"github.com/matzegoebel/run-wrf/internal/runlog"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// Estimator holds the resource-estimation policy from the config file.
// For both runtime and memory the strategies are tried in a fixed
// precedence order: explicit value, lookup table / per-point formula,
// statistics mined from prior identical runs. If none yields a value
// the run is skipped, never guessed.
type Estimator struct {
	// runtime
	RTMinutes      *float64          // explicit wall clock for the whole run (minutes)
	RTPerStepTable map[int64]float64 // per-step seconds keyed by grid spacing dx (m)
	RTBuffer       float64           // safety factor applied to the requested runtime
	RTTestMinutes  float64           // wall clock for short test runs

	// memory
	RequestVMem    bool
	VMemMB         *float64 // explicit per-job virtual memory (MB)
	VMemPerPointMB *float64 // per-grid-point memory (MB)
	VMemMinMB      *float64
	VMemBuffer     float64 // safety factor applied to the memory request
	VMemTestMB     float64

	SearchPaths []string // where to look for prior identical runs
	UsageLog    string   // usage report file name, default qstat.info
}

// JobEstimate is the derived resource requirement of one run.
type JobEstimate struct {
	PerStepSec float64 // runtime per timestep before the buffer factor
	VMemMB     float64 // per-job memory after slot scaling and buffer
}

// Skip is the recoverable "no estimate available" outcome. The caller
// excludes only this run from the batch and continues.
type Skip struct {
	Reason string
}

// Estimate derives runtime and memory for one repetition. refDir is the
// reference run directory (repetition 0) used for identical-run mining.
// A nil JobEstimate together with a non-nil Skip means the run cannot
// be scheduled with the current policy.
func (e *Estimator) Estimate(refDir string, dx int64, gridPoints int64, nSlots int, nSteps float64, testRun bool) (*JobEstimate, *Skip) {
	est := &JobEstimate{}
	var identical []string
	searched := false

	// runtime per timestep
	switch {
	case testRun:
		est.PerStepSec = e.RTTestMinutes * 60 / nSteps / e.RTBuffer
	case e.RTMinutes != nil:
		est.PerStepSec = *e.RTMinutes * 60 / nSteps / e.RTBuffer
	case e.RTPerStepTable != nil && e.RTPerStepTable[dx] != 0:
		utils.PrintMessage("Use runtime dict")
		est.PerStepSec = e.RTPerStepTable[dx]
		utils.PrintMessage("Runtime per time step: %.5f s", est.PerStepSec)
	default:
		utils.PrintMessage("Get runtime from previous runs")
		identical = FindIdenticalRuns(refDir, e.SearchPaths)
		searched = true
		perStep, sd, ok := minedRuntime(identical)
		if !ok {
			return nil, &Skip{Reason: "No runtime specified and no previous runs found. Skipping..."}
		}
		est.PerStepSec = perStep
		utils.PrintMessage("Runtime per time step standard deviation: %.5f s", sd)
		utils.PrintMessage("Runtime per time step: %.5f s", est.PerStepSec)
	}

	if !e.RequestVMem {
		return est, nil
	}

	// virtual memory
	var vmem float64
	switch {
	case testRun:
		vmem = e.VMemTestMB
	case e.VMemMB != nil:
		vmem = *e.VMemMB
	case e.VMemPerPointMB != nil:
		utils.PrintMessage("Use vmem per grid point")
		vmem = float64(int64(*e.VMemPerPointMB*float64(gridPoints))) / float64(nSlots)
		if e.VMemMinMB != nil && vmem < *e.VMemMinMB {
			vmem = *e.VMemMinMB
		}
	default:
		utils.PrintMessage("Get vmem from previous runs")
		if !searched {
			identical = FindIdenticalRuns(refDir, e.SearchPaths)
		}
		max, ok := runlog.MaxVMemMB(identical, e.UsageLog)
		if !ok {
			return nil, &Skip{Reason: "No vmem specified and no previous runs found. Skipping..."}
		}
		vmem = max
	}

	est.VMemMB = vmem * float64(nSlots) * e.VMemBuffer
	utils.PrintMessage("Use vmem per slot: %s", utils.FormatMB(est.VMemMB/float64(nSlots)))
	return est, nil
}

// minedRuntime averages the pre-aggregated per-run statistics of prior
// identical runs: the mean of per-run mean step timings, and likewise
// for the standard deviations. Deliberately a two-level average, not a
// pooled mean over raw samples.
func minedRuntime(runs []string) (perStep, sd float64, ok bool) {
	n := 0
	for _, r := range runs {
		t, err := runlog.Parse(r)
		if err != nil || !t.HasSamples() {
			continue
		}
		perStep += t.MeanSec
		sd += t.SDSec
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return perStep / float64(n), sd / float64(n), true
}
