package orchestrator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/pool"
	"github.com/matzegoebel/run-wrf/internal/scheduler"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

const initSuccessMarker = "wrf: SUCCESS COMPLETE IDEAL INIT"

// submitInit submits or executes the initialization of one repetition.
func (o *Orchestrator) submitInit(s *runSpec, rep int, argStr, ioFile string) error {
	cfg := o.cfg
	idr := s.conf.Name + "_" + strconv.Itoa(rep)

	// per-repetition output file names appended to the shared argument
	// string
	var sb strings.Builder
	sb.WriteString(argStr)
	for _, st := range cfg.Streams {
		key := "history_outname"
		if st.Index > 0 {
			key = fmt.Sprintf("auxhist%d_outname", st.Index)
		}
		fmt.Fprintf(&sb, " %s \"%s\"", key, filepath.Join(o.outPath, st.Name+"_"+idr))
	}
	argStrR := sb.String()

	env := map[string]string{
		"JOB_NAME":       idr,
		"wrfv":           s.wrfDir,
		"ideal_case":     cfg.IdealCase,
		"input_sounding": inputSounding(s.conf),
		"sleep":          strconv.Itoa(rep),
		"nx":             strconv.Itoa(s.nx),
		"ny":             strconv.Itoa(s.ny),
		"run_path":       cfg.RunPath,
		"build_path":     cfg.BuildPath,
		"batch":          boolEnv(o.opts.UseScheduler),
		"wrf_args":       "",
		"cluster":        boolEnv(cfg.Cluster),
		"iofile":         ioFile,
		"module_load":    cfg.ModuleLoad,
	}

	if !o.opts.UseScheduler {
		if o.opts.Verbose {
			utils.PrintMessage("bash init_wrf.job '%s'", argStrR)
		}
		if o.opts.CheckOnly {
			return nil
		}
		runDirR := s.runDir + "_" + strconv.Itoa(rep)
		if _, err := o.runner.Run("bash", []string{"init_wrf.job", argStrR}, env); err != nil {
			utils.PrintWarning("init script: %v", err)
		}
		return checkInitLog(runDirR)
	}

	env["job_scheduler"] = string(o.backend.Kind())
	env["wrf_args"] = argStrR

	req := &scheduler.Request{
		JobName:       idr,
		Queue:         s.queue,
		QOS:           cfg.QOS,
		Stdout:        filepath.Join(o.logDir, idr+".out"),
		Stderr:        filepath.Join(o.logDir, idr+".err"),
		RuntimeSec:    cfg.RTInitMinutes * 60,
		MailAddress:   cfg.MailAddress,
		Mail:          o.opts.Mail,
		SlotArgs:      o.backend.InitSlotArgs(),
		VMemPerSlotMB: s.vmemMB,
		HStackMB:      int(math.Round(cfg.HStackInitMB)),
		Script:        "init_wrf.job",
		Env:           env,
	}
	sub := &scheduler.Submitter{
		Backend: o.backend,
		Runner:  o.runner,
		Verbose: o.opts.Verbose,
		DryRun:  o.opts.CheckOnly,
	}
	_, err := sub.Submit(req)
	return err
}

// checkInitLog verifies the success marker the ideal-case preprocessor
// writes at the end of its log.
func checkInitLog(runDirR string) error {
	data, err := os.ReadFile(filepath.Join(runDirR, "init.log"))
	if err == nil && strings.Contains(string(data), initSuccessMarker) {
		utils.PrintSuccess(initSuccessMarker)
		return nil
	}
	if errData, err := os.ReadFile(filepath.Join(runDirR, "init.err")); err == nil {
		fmt.Println(string(errData))
	}
	return ErrInitFailed
}

// submitPool submits one flushed pool of runs, or executes them
// directly when no scheduler is used.
func (o *Orchestrator) submitPool(p *pool.Pool) error {
	cfg := o.cfg
	utils.PrintMessage("Submit IDs: %v", p.IDs())
	utils.PrintMessage("with total cores: %d", p.TotalSlots())

	jobName := p.JobName(o.opts.Pool)
	timestamp := time.Now().Format("2006-01-02T15:04:05")

	nslots := make([]string, p.Len())
	nxs := make([]string, p.Len())
	nys := make([]string, p.Len())
	for i, r := range p.Runs {
		nslots[i] = strconv.Itoa(r.Slots)
		nxs[i] = strconv.Itoa(r.NX)
		nys[i] = strconv.Itoa(r.NY)
	}

	env := map[string]string{
		"JOB_NAME":    jobName,
		"nslots":      strings.Join(nslots, " "),
		"nx":          strings.Join(nxs, " "),
		"ny":          strings.Join(nys, " "),
		"jobs":        strings.Join(p.IDs(), " "),
		"pool_jobs":   boolEnv(o.opts.Pool),
		"run_path":    cfg.RunPath,
		"batch":       boolEnv(o.opts.UseScheduler),
		"cluster":     boolEnv(cfg.Cluster),
		"restart":     boolEnv(o.opts.Mode == ModeRestart),
		"outpath":     o.outPath,
		"module_load": cfg.ModuleLoad,
		"timestamp":   timestamp,
	}

	if !o.opts.UseScheduler {
		env["rtlimit"] = ""
		return o.runDirect(p, timestamp, env)
	}

	env["job_scheduler"] = string(o.backend.Kind())

	signalSec := cfg.SendRTSignal
	if o.opts.Mode == ModeRestart {
		signalSec = cfg.SendRTSignalRestart
	}
	if err := p.CheckSignalTime(signalSec); err != nil {
		return err
	}
	env["rtlimit"] = strconv.Itoa(int(p.MaxRuntimeSec() - signalSec))

	queue := cfg.Queue
	vmemPerSlot := 0
	if cfg.RequestVMem {
		vmemPerSlot = p.VMemPerSlotMB()
		if cfg.BigmemLimitMB > 0 && float64(vmemPerSlot) > cfg.BigmemLimitMB {
			queue = cfg.BigmemQueue
		}
	}

	slotArgs, err := o.poolSlotArgs(p)
	if err != nil {
		return err
	}

	req := &scheduler.Request{
		JobName:       jobName,
		Queue:         queue,
		QOS:           cfg.QOS,
		Stdout:        filepath.Join(o.logDir, jobName+".out"),
		Stderr:        filepath.Join(o.logDir, jobName+".err"),
		RuntimeSec:    p.MaxRuntimeSec(),
		MailAddress:   cfg.MailAddress,
		Mail:          o.opts.Mail,
		SlotArgs:      slotArgs,
		VMemPerSlotMB: vmemPerSlot,
		HStackMB:      int(math.Round(cfg.HStackMB)),
		Script:        "run_wrf.job",
		Env:           env,
	}
	sub := &scheduler.Submitter{
		Backend: o.backend,
		Runner:  o.runner,
		Verbose: o.opts.Verbose,
		DryRun:  o.opts.CheckOnly,
	}
	_, err = sub.Submit(req)
	return err
}

// poolSlotArgs derives the scheduler placement flags for one pool.
func (o *Orchestrator) poolSlotArgs(p *pool.Pool) ([]string, error) {
	cfg := o.cfg
	if o.opts.Pool {
		perHost := cfg.PoolSize
		if sge, ok := o.backend.(*scheduler.SGEBackend); ok && cfg.ReducePool {
			// shrink the per-host request to the smallest parallel
			// environment still fitting the whole pool
			ph, err := sge.SmallestPerHost(o.runner, p.TotalSlots())
			if err != nil {
				return nil, err
			}
			perHost = ph
		}
		return o.backend.PoolSlotArgs(p.TotalSlots(), perHost), nil
	}
	r := p.Runs[0]
	if r.Slots > 1 || o.backend.Kind() == scheduler.SLURM {
		return o.backend.SingleSlotArgs(r.Slots), nil
	}
	return nil, nil
}

// runDirect executes the run script on the local machine. In wait mode
// the tail of each run log is shown afterwards.
func (o *Orchestrator) runDirect(p *pool.Pool, timestamp string, env map[string]string) error {
	if o.opts.Verbose {
		utils.PrintMessage("bash run_wrf.job")
	}
	if o.opts.CheckOnly {
		return nil
	}
	if !o.opts.Wait {
		return o.runner.Start("bash", []string{"run_wrf.job"}, env)
	}
	if _, err := o.runner.Run("bash", []string{"run_wrf.job"}, env); err != nil {
		utils.PrintWarning("run script: %v", err)
	}

	logLines := 10
	if o.opts.Mode == ModeRestart {
		logLines = 15
	}
	for _, id := range p.IDs() {
		utils.PrintMessage("%s", id)
		dir := filepath.Join(o.cfg.RunPath, "WRF_"+id)
		fmt.Println(utils.TailLines(filepath.Join(dir, "run_"+timestamp+".log"), logLines))
		if data, err := os.ReadFile(filepath.Join(dir, "run_"+timestamp+".err")); err == nil {
			fmt.Println(string(data))
		}
	}
	return nil
}

func boolEnv(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func inputSounding(c grid.Configuration) string {
	if v, ok := c.Params.Get("input_sounding"); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}
