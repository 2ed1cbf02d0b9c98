package lifecycle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

const restartNamelist = `&time_control
 run_hours = 12,
 restart = .false.,
 start_year = 2020,
 start_month = 6,
 start_day = 20,
 start_hour = 0,
 start_minute = 0,
 start_second = 0,
/
`

func setupRestartRun(t *testing.T) (runDir, outPath string) {
	t.Helper()
	base := t.TempDir()
	runDir = filepath.Join(base, "WRF_test_0")
	outPath = filepath.Join(base, "out")
	for _, d := range []string{runDir, outPath} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	touch(t, filepath.Join(runDir, namelist.FileName), restartNamelist)
	return runDir, outPath
}

func TestPrepareRestart(t *testing.T) {
	runDir, outPath := setupRestartRun(t)
	touch(t, filepath.Join(runDir, "wrfrst_d01_2020-06-20_06:00:00"), "")
	touch(t, filepath.Join(outPath, "wrfout_test_0"), "segment")

	plan, skip, err := PrepareRestart(runDir, outPath, []string{"wrfout", "fastout"}, "test_0", endTime)
	if err != nil {
		t.Fatalf("PrepareRestart: %v", err)
	}
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	if plan.StartTime != "2020-06-20_06:00:00" {
		t.Errorf("StartTime = %q", plan.StartTime)
	}
	if plan.RunHours != 6 {
		t.Errorf("RunHours = %v; want 6", plan.RunHours)
	}

	// previous segment stashed under rst, nothing left at the old path
	if utils.FileExists(filepath.Join(outPath, "wrfout_test_0")) {
		t.Error("old output segment still in place")
	}
	if !utils.FileExists(filepath.Join(outPath, "rst", "wrfout_test_0_rst_0")) {
		t.Error("stashed segment missing")
	}

	nl, err := namelist.ReadFile(filepath.Join(runDir, namelist.FileName))
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]namelist.Value{
		"restart":    namelist.Bool(true),
		"start_hour": namelist.Int(6),
		"end_hour":   namelist.Int(12),
		"end_day":    namelist.Int(20),
	}
	for k, want := range checks {
		if v, ok := nl.Get(k); !ok || !v.Equal(want) {
			t.Errorf("%s = %v; want %v", k, v, want)
		}
	}
}

func TestPrepareRestartPicksNewestFile(t *testing.T) {
	runDir, outPath := setupRestartRun(t)
	old := filepath.Join(runDir, "wrfrst_d01_2020-06-20_03:00:00")
	newer := filepath.Join(runDir, "wrfrst_d01_2020-06-20_09:00:00")
	touch(t, old, "")
	touch(t, newer, "")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	plan, skip, err := PrepareRestart(runDir, outPath, nil, "test_0", endTime)
	if err != nil || skip != nil {
		t.Fatalf("PrepareRestart: %v, %v", err, skip)
	}
	if plan.StartTime != "2020-06-20_09:00:00" {
		t.Errorf("StartTime = %q; want the newest restart file", plan.StartTime)
	}
}

func TestPrepareRestartAlreadyComplete(t *testing.T) {
	runDir, outPath := setupRestartRun(t)
	touch(t, filepath.Join(runDir, "run.log"), "d01 "+endTime+" wrf: SUCCESS COMPLETE WRF\n")

	plan, skip, err := PrepareRestart(runDir, outPath, nil, "test_0", endTime)
	if err != nil {
		t.Fatal(err)
	}
	if plan != nil || skip == nil || !strings.Contains(skip.Reason, "complete") {
		t.Errorf("plan = %v, skip = %v", plan, skip)
	}
}

func TestPrepareRestartNoRestartFiles(t *testing.T) {
	runDir, outPath := setupRestartRun(t)

	plan, skip, err := PrepareRestart(runDir, outPath, nil, "test_0", endTime)
	if err != nil {
		t.Fatal(err)
	}
	if plan != nil || skip == nil {
		t.Errorf("plan = %v, skip = %v", plan, skip)
	}
}

func TestPrepareRestartAtEndTime(t *testing.T) {
	runDir, outPath := setupRestartRun(t)
	touch(t, filepath.Join(runDir, "wrfrst_d01_"+endTime), "")

	plan, skip, err := PrepareRestart(runDir, outPath, nil, "test_0", endTime)
	if err != nil {
		t.Fatal(err)
	}
	if plan != nil || skip == nil {
		t.Errorf("restart at the end time must skip: plan = %v, skip = %v", plan, skip)
	}
}
