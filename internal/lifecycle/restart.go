package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/runlog"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// TimeLayout is the WRF timestamp format used in namelists, restart
// file names and log markers.
const TimeLayout = "2006-01-02_15:04:05"

// RestartPlan is the outcome of preparing a continuation run.
type RestartPlan struct {
	StartTime string  // restart point, WRF time format
	RunHours  float64 // remaining simulation hours
}

// Skip is the recoverable "nothing to do" outcome of restart
// preparation.
type Skip struct {
	Reason string
}

// PrepareRestart sets up runDir to continue from its newest restart
// file: previous output segments are stashed away and the namelist is
// patched with restart mode and the new time window. streams are the
// output stream file prefixes, runID the output file suffix.
func PrepareRestart(runDir, outPath string, streams []string, runID, endTime string) (*RestartPlan, *Skip, error) {
	if runlog.Complete(runDir, endTime) {
		return nil, &Skip{Reason: "Run already complete"}, nil
	}

	rstFile, err := newestRestartFile(runDir)
	if err != nil {
		return nil, nil, err
	}
	if rstFile == "" {
		utils.PrintWarning("no restart files found. Skipping...")
		return nil, &Skip{Reason: "no restart files found"}, nil
	}

	startTime, err := restartTimestamp(rstFile)
	if err != nil {
		return nil, nil, err
	}
	utils.PrintMessage("Restart run from %s", strings.Replace(startTime, "_", " ", 1))

	start, err := time.Parse(TimeLayout, startTime)
	if err != nil {
		return nil, nil, fmt.Errorf("restart file %s: %w", rstFile, err)
	}
	end, err := time.Parse(TimeLayout, endTime)
	if err != nil {
		return nil, nil, fmt.Errorf("end time %q: %w", endTime, err)
	}
	runHours := end.Sub(start).Hours()
	if runHours <= 0 {
		return nil, &Skip{Reason: "Run already complete"}, nil
	}

	// Previous output segments move to the rst directory so the
	// continuation run can write fresh files under the same name.
	rstDir := filepath.Join(outPath, "rst")
	for _, stream := range streams {
		outFile := filepath.Join(outPath, stream+"_"+runID)
		if !utils.FileExists(outFile) {
			continue
		}
		if _, err := StashRestartOutput(outFile, rstDir); err != nil {
			return nil, nil, err
		}
	}

	updates := namelist.NewParams()
	updates.Set("restart", namelist.Bool(true))
	setTimeWindow(updates, "start", start)
	setTimeWindow(updates, "end", end)
	if err := namelist.PatchFile(filepath.Join(runDir, namelist.FileName), updates); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRestartPrep, err)
	}

	return &RestartPlan{StartTime: startTime, RunHours: runHours}, nil, nil
}

// SetTimeWindow writes the start_* and end_* namelist keys for the
// given boundary ("start" or "end").
func setTimeWindow(p *namelist.Params, boundary string, t time.Time) {
	p.Set(boundary+"_year", namelist.Int(int64(t.Year())))
	p.Set(boundary+"_month", namelist.Int(int64(t.Month())))
	p.Set(boundary+"_day", namelist.Int(int64(t.Day())))
	p.Set(boundary+"_hour", namelist.Int(int64(t.Hour())))
	p.Set(boundary+"_minute", namelist.Int(int64(t.Minute())))
	p.Set(boundary+"_second", namelist.Int(int64(t.Second())))
}

// SetTimeWindow is the exported form used when deriving the initial
// namelist from the configured start and end times.
func SetTimeWindow(p *namelist.Params, boundary string, t time.Time) {
	setTimeWindow(p, boundary, t)
}

// newestRestartFile returns the most recently modified wrfrst file in
// runDir, or empty if none exists.
func newestRestartFile(runDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(runDir, "wrfrst*"))
	if err != nil {
		return "", err
	}
	newest := ""
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = m
			newestMod = info.ModTime()
		}
	}
	return newest, nil
}

// restartTimestamp recovers the WRF timestamp from a restart file name
// like wrfrst_d01_2020-06-20_12:00:00, i.e. the last two underscore
// separated fields.
func restartTimestamp(path string) (string, error) {
	parts := strings.Split(filepath.Base(path), "_")
	if len(parts) < 2 {
		return "", fmt.Errorf("restart file name %s has no timestamp", path)
	}
	return parts[len(parts)-2] + "_" + parts[len(parts)-1], nil
}
