package resource

import (
	"os"
	"path/filepath"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestEstimateExplicitRuntime(t *testing.T) {
	e := &Estimator{RTMinutes: floatPtr(60), RTBuffer: 1.2}
	est, skip := e.Estimate("", 500, 0, 1, 100, false)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	// 60 min over 100 steps, with the buffer factor divided back out
	rt, steps, buf := 60.0, 100.0, 1.2
	want := rt * 60 / steps / buf
	if est.PerStepSec != want {
		t.Errorf("PerStepSec = %v; want %v", est.PerStepSec, want)
	}
	if est.VMemMB != 0 {
		t.Errorf("vmem derived although not requested: %v", est.VMemMB)
	}
}

func TestEstimateRuntimeTable(t *testing.T) {
	e := &Estimator{
		RTPerStepTable: map[int64]float64{500: 0.25, 2000: 0.05},
		RTBuffer:       1.2,
	}
	est, skip := e.Estimate("", 2000, 0, 1, 100, false)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	if est.PerStepSec != 0.05 {
		t.Errorf("PerStepSec = %v; want 0.05", est.PerStepSec)
	}
}

func TestEstimateTestRunRuntime(t *testing.T) {
	e := &Estimator{RTMinutes: floatPtr(60), RTBuffer: 1.0, RTTestMinutes: 5}
	est, skip := e.Estimate("", 500, 0, 1, 10, true)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	if est.PerStepSec != 5*60.0/10 {
		t.Errorf("PerStepSec = %v; want 30", est.PerStepSec)
	}
}

func TestEstimateSkipWithoutRuntimeSource(t *testing.T) {
	e := &Estimator{RTBuffer: 1.2}
	est, skip := e.Estimate(t.TempDir(), 500, 0, 1, 100, false)
	if est != nil || skip == nil {
		t.Fatalf("want skip, got est=%v skip=%v", est, skip)
	}
	if skip.Reason != "No runtime specified and no previous runs found. Skipping..." {
		t.Errorf("skip reason = %q", skip.Reason)
	}
}

func TestEstimateVMemPerPoint(t *testing.T) {
	e := &Estimator{
		RTMinutes:      floatPtr(60),
		RTBuffer:       1.0,
		RequestVMem:    true,
		VMemPerPointMB: floatPtr(0.5),
		VMemBuffer:     1.0,
	}
	est, skip := e.Estimate("", 500, 10000, 4, 100, false)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	// 0.5 MB/point * 10000 points split over 4 slots, re-multiplied for
	// the whole job
	if est.VMemMB != 5000 {
		t.Errorf("VMemMB = %v; want 5000", est.VMemMB)
	}
}

func TestEstimateVMemFloor(t *testing.T) {
	e := &Estimator{
		RTMinutes:      floatPtr(60),
		RTBuffer:       1.0,
		RequestVMem:    true,
		VMemPerPointMB: floatPtr(0.01),
		VMemMinMB:      floatPtr(600),
		VMemBuffer:     1.5,
	}
	est, skip := e.Estimate("", 500, 100, 2, 100, false)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	if est.VMemMB != 600*2*1.5 {
		t.Errorf("VMemMB = %v; want %v", est.VMemMB, 600*2*1.5)
	}
}

func TestEstimateExplicitVMem(t *testing.T) {
	e := &Estimator{
		RTMinutes:   floatPtr(60),
		RTBuffer:    1.0,
		RequestVMem: true,
		VMemMB:      floatPtr(800),
		VMemBuffer:  1.5,
	}
	est, skip := e.Estimate("", 500, 0, 2, 100, false)
	if skip != nil {
		t.Fatalf("unexpected skip: %s", skip.Reason)
	}
	if est.VMemMB != 800*2*1.5 {
		t.Errorf("VMemMB = %v; want %v", est.VMemMB, 800*2*1.5)
	}
}

func writeRunLog(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.log"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMinedRuntime(t *testing.T) {
	base := t.TempDir()
	runA := filepath.Join(base, "WRF_a_0")
	runB := filepath.Join(base, "WRF_b_0")
	writeRunLog(t, runA, ""+
		"Timing for main: time 2020-06-20_00:00:10 on domain 1: 0.25000 elapsed seconds.\n"+
		"Timing for main: time 2020-06-20_00:00:20 on domain 1: 0.75000 elapsed seconds.\n")
	writeRunLog(t, runB, ""+
		"Timing for main: time 2020-06-20_00:00:10 on domain 1: 0.25000 elapsed seconds.\n")

	perStep, _, ok := minedRuntime([]string{runA, runB})
	if !ok {
		t.Fatal("expected a mined runtime")
	}
	// mean of the per-run means: (0.5 + 0.25) / 2
	if perStep != 0.375 {
		t.Errorf("perStep = %v; want 0.375", perStep)
	}
}

func TestMinedRuntimeNoSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "WRF_x_0")
	writeRunLog(t, dir, "starting wrf task\n")
	if _, _, ok := minedRuntime([]string{dir, filepath.Join(dir, "missing")}); ok {
		t.Error("logs without timing lines must not yield a runtime")
	}
}
