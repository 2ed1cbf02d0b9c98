package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzegoebel/run-wrf/internal/config"
	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/lifecycle"
	"github.com/matzegoebel/run-wrf/internal/pool"
	"github.com/matzegoebel/run-wrf/internal/resource"
	"github.com/matzegoebel/run-wrf/internal/scheduler"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// Orchestrator runs one invocation of the tool: it expands the grid,
// resolves every configuration into a run spec and walks the
// repetition loop of the selected mode.
type Orchestrator struct {
	cfg  *config.Config
	opts Options

	backend scheduler.Backend
	runner  scheduler.CommandRunner
	est     *resource.Estimator
	batcher *pool.Batcher

	outPath string
	logDir  string
}

// New returns an orchestrator executing external commands directly.
func New(cfg *config.Config, opts Options) *Orchestrator {
	return &Orchestrator{cfg: cfg, opts: opts, runner: scheduler.ExecRunner{}}
}

// NewWithRunner injects a command runner, used by tests.
func NewWithRunner(cfg *config.Config, opts Options, runner scheduler.CommandRunner) *Orchestrator {
	return &Orchestrator{cfg: cfg, opts: opts, runner: runner}
}

// Run executes the selected mode over all grid configurations.
func (o *Orchestrator) Run() error {
	if err := o.opts.Validate(); err != nil {
		return err
	}
	cfg := o.cfg

	if o.opts.TestRun {
		utils.PrintMessage("Do short test runs on cluster to find out required runtime and virtual memory")
	}

	outdir := cfg.Outdir
	if o.opts.Mode == ModeInit && o.opts.Outdir != "" {
		outdir = o.opts.Outdir
	}
	o.outPath = filepath.Join(cfg.OutPath, outdir)
	if err := os.MkdirAll(o.outPath, utils.PermDir); err != nil {
		return err
	}

	if o.opts.UseScheduler {
		backend, err := scheduler.New(cfg.SchedulerKind())
		if err != nil {
			return err
		}
		o.backend = backend
		o.logDir = filepath.Join(cfg.RunPath, "logs")
		if err := os.MkdirAll(o.logDir, utils.PermDir); err != nil {
			return err
		}
		// SLURM does not oversubscribe nodes, so single-slot jobs must
		// be packed together
		if backend.Kind() == scheduler.SLURM && cfg.ForcePool {
			o.opts.Pool = true
		}
		if cfg.MailAddress == "" {
			return &FlagError{Reason: fmt.Sprintf(
				"for jobs using %s, provide a valid mail address in the config file", backend.Kind())}
		}
	}

	o.est = &resource.Estimator{
		RTMinutes:      cfg.RTMinutes,
		RTPerStepTable: cfg.RuntimePerStep,
		RTBuffer:       cfg.RTBuffer,
		RTTestMinutes:  cfg.RTTestMinutes,
		RequestVMem:    cfg.RequestVMem,
		VMemMB:         cfg.VMemMB,
		VMemPerPointMB: cfg.VMemPerPointMB,
		VMemMinMB:      cfg.VMemMinMB,
		VMemBuffer:     cfg.VMemBuffer,
		VMemTestMB:     cfg.VMemTestMB,
		SearchPaths:    cfg.SearchPaths,
	}
	o.batcher = pool.NewBatcher(cfg.PoolSize, o.opts.Pool)

	configs, err := grid.Expand(*cfg.ParamGrid, cfg.BaseParams, cfg.Labels, cfg.RunID)
	if err != nil {
		return err
	}

	switch o.opts.Mode {
	case ModeInit:
		utils.PrintMessage("Initialize WRF simulations")
	case ModeRestart:
		utils.PrintMessage("Restart WRF simulations")
	default:
		utils.PrintMessage("Run WRF simulations")
	}
	utils.PrintMessage("Configs:")
	for _, c := range configs {
		utils.PrintMessage("  %s", utils.StyleName(c.Name))
	}

	for ci, c := range configs {
		utils.PrintMessage("")
		utils.PrintMessage("Config: %s", utils.StyleName(c.Name))

		spec, err := o.deriveSpec(c)
		if err != nil {
			return err
		}
		if o.opts.Mode == ModeInit {
			if err := o.runInit(spec); err != nil {
				return err
			}
			continue
		}
		if err := o.runSubmit(spec, ci == len(configs)-1); err != nil {
			return err
		}
	}

	if o.opts.Mode != ModeInit {
		// jobs left pending because the final repetitions were skipped
		pools, err := o.batcher.FlushRemaining()
		if err != nil {
			return err
		}
		for _, p := range pools {
			if err := o.submitPool(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// runSubmit walks the repetitions of one configuration in run or
// restart mode, feeding accepted runs to the batcher.
func (o *Orchestrator) runSubmit(s *runSpec, lastConfig bool) error {
	cfg := o.cfg
	streams := cfg.StreamNames()
	refDir := s.runDir + "_0"

	for rep := 0; rep < s.reps; rep++ {
		idr := s.conf.Name + "_" + strconv.Itoa(rep)
		runDirR := s.runDir + "_" + strconv.Itoa(rep)
		last := lastConfig && rep == s.reps-1

		state := lifecycle.Detect(runDirR, s.endTime)
		if state == lifecycle.StateMissing || state == lifecycle.StateUnprepared {
			utils.PrintWarning("Run not initialized yet! Skipping...")
			continue
		}

		runHours := s.runHours
		if o.opts.Mode == ModeRestart {
			plan, skip, err := lifecycle.PrepareRestart(runDirR, o.outPath, streams, idr, s.endTime)
			if err != nil {
				return err
			}
			if skip != nil {
				utils.PrintMessage("%s", skip.Reason)
				continue
			}
			runHours = plan.RunHours
		} else if skipRun, err := o.handleExistingOutput(streams, idr); err != nil {
			return err
		} else if skipRun {
			continue
		}

		r := pool.Run{ID: idr, Slots: s.slots, NX: s.nx, NY: s.ny}
		if o.opts.UseScheduler {
			nSteps := runHours * 3600 / s.dt
			est, skip := o.est.Estimate(refDir, int64(s.dx), s.gridPoints, s.slots, nSteps, o.opts.TestRun)
			if skip != nil {
				utils.PrintMessage("%s", skip.Reason)
				continue
			}
			r.RuntimeSec = est.PerStepSec * cfg.RTBuffer * nSteps
			r.VMemMB = est.VMemMB
			if o.opts.Mode != ModeRestart {
				utils.PrintMessage("Runtime: %.1f min", r.RuntimeSec/60)
			}
		}

		pools, err := o.batcher.Accept(r, last)
		if err != nil {
			return err
		}
		for _, p := range pools {
			if err := o.submitPool(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleExistingOutput applies the exists policy when output files of a
// previous run with the same identifier are found.
func (o *Orchestrator) handleExistingOutput(streams []string, idr string) (bool, error) {
	var existing []string
	for _, name := range streams {
		f := filepath.Join(o.outPath, name+"_"+idr)
		if utils.FileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return false, nil
	}
	utils.PrintMessage("Output files already exist.")
	switch o.opts.Exist {
	case lifecycle.PolicySkip:
		utils.PrintMessage("Skipping...")
		return true, nil
	case lifecycle.PolicyOverwrite:
		utils.PrintMessage("Overwriting...")
	case lifecycle.PolicyBackup:
		utils.PrintMessage("Creating backup...")
		bakDir := filepath.Join(o.outPath, "bak")
		for _, f := range existing {
			if _, err := lifecycle.BackupFile(f, bakDir); err != nil {
				return false, err
			}
		}
	default:
		return false, &lifecycle.UnknownPolicyError{Value: string(rune(o.opts.Exist))}
	}
	return false, nil
}

// runInit walks the repetitions of one configuration in init mode.
func (o *Orchestrator) runInit(s *runSpec) error {
	argStr, ioFile, err := o.prepareInit(s)
	if err != nil {
		return err
	}

	for rep := 0; rep < s.reps; rep++ {
		runDirR := s.runDir + "_" + strconv.Itoa(rep)

		if utils.DirExists(runDirR) {
			switch o.opts.Exist {
			case lifecycle.PolicySkip:
				utils.PrintMessage("Run directory already exists.")
				if utils.FileExists(filepath.Join(runDirR, lifecycle.InputFileName)) {
					utils.PrintMessage("Initialization was complete.")
					utils.PrintMessage("Skipping...")
					continue
				}
				utils.PrintMessage("However, WRF initialization was not successfully carried out.")
				utils.PrintMessage("Redoing initialization...")
			case lifecycle.PolicyOverwrite:
				utils.PrintMessage("Overwriting...")
			case lifecycle.PolicyBackup:
				utils.PrintMessage("Creating backup...")
				if _, err := lifecycle.BackupDir(runDirR, filepath.Join(o.cfg.RunPath, "bak")); err != nil {
					return err
				}
			default:
				return &lifecycle.UnknownPolicyError{Value: string(rune(o.opts.Exist))}
			}
		}

		if err := o.submitInit(s, rep, argStr, ioFile); err != nil {
			return err
		}
	}
	return nil
}
