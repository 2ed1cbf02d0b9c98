package orchestrator

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzegoebel/run-wrf/internal/config"
	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/lifecycle"
	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/resource"
	"github.com/matzegoebel/run-wrf/internal/scheduler"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// runSpec is one grid configuration resolved into everything the
// submission loop needs: the time window, the horizontal domain, the
// MPI tiling and the model build directory.
type runSpec struct {
	conf grid.Configuration

	start, end time.Time
	endTime    string // WRF time format, used in log markers
	runHours   float64

	dx         float64
	dt         float64
	eWE, eSN   int64
	gridPoints int64
	nSteps     float64

	nx, ny int
	slots  int

	reps    int
	runDir  string // run directory base, repetition suffix appended later
	wrfDir  string // build subdirectory
	queue   string
	vmemMB  int // init job memory request, MB
}

func (o *Orchestrator) deriveSpec(c grid.Configuration) (*runSpec, error) {
	cfg := o.cfg
	p := c.Params
	s := &runSpec{conf: c, reps: 1, queue: cfg.Queue}

	dx, err := floatParam(c, "dx")
	if err != nil {
		return nil, err
	}
	s.dx = dx

	if v, ok := p.Get("n_rep"); ok {
		if n, ok := v.AsInt(); ok && n > 0 {
			s.reps = int(n)
		}
	}
	// a test run probes resource demands once, repetitions add nothing
	if o.opts.TestRun {
		s.reps = 1
	}

	if err := s.resolveTimeWindow(c); err != nil {
		return nil, err
	}
	if err := s.resolveDomain(c, cfg); err != nil {
		return nil, err
	}

	caps := resource.TileCaps{
		MinPerProc: cfg.MinNPerProc,
		EvenSplit:  cfg.EvenSplit,
		MaxX:       cfg.MaxSlotsX,
		MaxY:       cfg.MaxSlotsY,
	}
	s.nx, s.ny = resource.Tile(int(s.eWE-1), int(s.eSN-1), caps)
	s.slots = resource.SlotCount(s.nx, s.ny)

	// timestep default follows the 6*dx(km) rule of thumb
	if v, ok := p.Get("dt_f"); ok {
		s.dt, _ = v.AsFloat()
	} else {
		s.dt = dx / 1000 * 6
		p.Set("dt_f", namelist.Float(s.dt))
	}
	if s.dt <= 0 {
		return nil, &ParamError{Config: c.Name, Param: "dt_f", Reason: "must be positive"}
	}
	s.nSteps = s.runHours * 3600 / s.dt

	s.runDir = filepath.Join(cfg.RunPath, "WRF_"+c.Name)
	s.wrfDir = cfg.WRFDirPrefix
	if o.opts.Debug {
		s.wrfDir += "_debug"
	}
	if s.slots > 1 || (o.opts.UseScheduler && cfg.SchedulerKind() == scheduler.SLURM) {
		s.wrfDir += "_mpi"
	}
	// some builds keep the model code in an extra WRF subdirectory
	build := filepath.Join(cfg.BuildPath, s.wrfDir)
	if !utils.DirExists(filepath.Join(build, "run")) && utils.DirExists(filepath.Join(build, "WRF", "run")) {
		s.wrfDir = filepath.Join(s.wrfDir, "WRF")
	}

	if o.opts.Mode == ModeInit && o.opts.UseScheduler && cfg.RequestVMem {
		vmem := cfg.VMemInitPerPointMB * float64(s.gridPoints)
		if vmem < cfg.VMemInitMinMB {
			vmem = cfg.VMemInitMinMB
		}
		s.vmemMB = int(vmem)
		if cfg.BigmemLimitMB > 0 && vmem > cfg.BigmemLimitMB {
			s.queue = cfg.BigmemQueue
		}
	}
	return s, nil
}

// resolveTimeWindow expands start_time/end_time into the start_* and
// end_* namelist keys and zeroes the run_* duration keys in favor of
// the explicit end time.
func (s *runSpec) resolveTimeWindow(c grid.Configuration) error {
	startStr, err := stringParam(c, "start_time")
	if err != nil {
		return err
	}
	endStr, err := stringParam(c, "end_time")
	if err != nil {
		return err
	}
	s.start, err = time.Parse(lifecycle.TimeLayout, startStr)
	if err != nil {
		return &ParamError{Config: c.Name, Param: "start_time", Reason: err.Error()}
	}
	s.end, err = time.Parse(lifecycle.TimeLayout, endStr)
	if err != nil {
		return &ParamError{Config: c.Name, Param: "end_time", Reason: err.Error()}
	}
	s.endTime = endStr
	s.runHours = s.end.Sub(s.start).Hours()
	if s.runHours <= 0 {
		return &TimeWindowError{Start: startStr, End: endStr}
	}

	lifecycle.SetTimeWindow(c.Params, "start", s.start)
	lifecycle.SetTimeWindow(c.Params, "end", s.end)
	for _, k := range []string{"run_hours", "run_minutes", "run_seconds"} {
		c.Params.Set(k, namelist.Int(0))
	}
	return nil
}

// resolveDomain derives e_we and e_sn from the physical extents,
// optionally padded to a minimum point count per axis.
func (s *runSpec) resolveDomain(c grid.Configuration, cfg *config.Config) error {
	lx, err := floatParam(c, "lx")
	if err != nil {
		return err
	}
	ly, err := floatParam(c, "ly")
	if err != nil {
		return err
	}

	s.eWE, err = domainPoints(c, "x", lx, s.dx, cfg.UseMinGridpoints, cfg.ForceDomainMultiple)
	if err != nil {
		return err
	}
	s.eSN, err = domainPoints(c, "y", ly, s.dx, cfg.UseMinGridpoints, cfg.ForceDomainMultiple)
	if err != nil {
		return err
	}
	s.gridPoints = s.eWE * s.eSN

	c.Params.Set("e_we", namelist.Int(s.eWE))
	c.Params.Set("e_sn", namelist.Int(s.eSN))
	return nil
}

func domainPoints(c grid.Configuration, axis string, extent, dx float64, useMin, forceMultiple string) (int64, error) {
	cells := int64(math.Ceil(extent / dx))
	if !axisSelected(useMin, axis) {
		return cells + 1, nil
	}
	minKey := "min_gridpoints_" + axis
	v, ok := c.Params.Get(minKey)
	if !ok {
		return 0, &ParamError{Config: c.Name, Param: minKey, Reason: "required by use_min_gridpoints"}
	}
	minPoints, _ := v.AsInt()
	points := cells
	if minPoints-1 > points {
		points = minPoints - 1
	}
	if axisSelected(forceMultiple, axis) {
		ratio := float64(points) * dx / extent
		if ratio != math.Trunc(ratio) {
			return 0, &DomainSizeError{Axis: axis}
		}
	}
	return points + 1, nil
}

// axisSelected interprets the "", "x", "y", "xy" axis selectors.
func axisSelected(sel, axis string) bool {
	return strings.Contains(sel, axis)
}

func floatParam(c grid.Configuration, key string) (float64, error) {
	v, ok := c.Params.Get(key)
	if !ok {
		return 0, &ParamError{Config: c.Name, Param: key, Reason: "is required"}
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, &ParamError{Config: c.Name, Param: key, Reason: "must be numeric"}
	}
	return f, nil
}

func stringParam(c grid.Configuration, key string) (string, error) {
	v, ok := c.Params.Get(key)
	if !ok {
		return "", &ParamError{Config: c.Name, Param: key, Reason: "is required"}
	}
	str, ok := v.AsString()
	if !ok {
		return "", &ParamError{Config: c.Name, Param: key, Reason: fmt.Sprintf("must be a string, got %s", v)}
	}
	return str, nil
}
