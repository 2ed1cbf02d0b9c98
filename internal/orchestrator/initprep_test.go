package orchestrator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzegoebel/run-wrf/internal/config"
	"github.com/matzegoebel/run-wrf/internal/grid"
	"github.com/matzegoebel/run-wrf/internal/namelist"
)

const buildNamelistContent = `&time_control
 run_hours = 6,
 frames_per_outfile = 1000,
/

&domains
 smooth_option = 0,
/
`

// initConfig builds a config with a populated build tree so the
// collision check against the ideal-case namelist can run.
func initConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := baseConfig(t)
	cfg.IdealCase = "em_les"
	cfg.ParamGrid = &grid.ParameterGrid{Entries: []grid.Entry{
		{Name: "surface", Sub: []grid.SubAxis{
			{Name: "spec_hfx", Values: []namelist.Value{namelist.Float(0.1)}},
		}},
	}}
	cfg.DelArgs = []string{
		"lx", "ly", "start_time", "end_time", "dt_f", "n_rep",
		"nz", "ztop", "dz0", "dz_method", "radt_min", "pbl_res",
		"isotropic_res", "spec_hfx", "input_sounding",
	}
	cfg.Streams = []config.Stream{
		{Index: 0, Name: "wrfout", IntervalMin: 30},
		{Index: 7, Name: "fastout", IntervalMin: 10.5},
	}

	caseDir := filepath.Join(cfg.BuildPath, "WRF", "test", "em_les")
	if err := os.MkdirAll(caseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(caseDir, namelist.FileName), []byte(buildNamelistContent), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func initConfiguration() grid.Configuration {
	c := testConfiguration(map[string]namelist.Value{
		"nz":                namelist.Int(3),
		"eta_levels":        namelist.Floats([]float64{1, 0.5, 0}),
		"radt_min":          namelist.Float(0.5),
		"pbl_res":           namelist.Float(500),
		"bl_pbl_physics":    namelist.Int(1),
		"isotropic_res":     namelist.Float(100),
		"spec_hfx":          namelist.Float(0.1),
		"surface_idx":       namelist.Int(0),
		"iofields_filename": namelist.Str(""),
	})
	return c
}

func TestPrepareInit(t *testing.T) {
	o := &Orchestrator{cfg: initConfig(t), opts: Options{Mode: ModeInit}}
	s, err := o.deriveSpec(initConfiguration())
	if err != nil {
		t.Fatal(err)
	}

	argStr, ioFile, err := o.prepareInit(s)
	if err != nil {
		t.Fatalf("prepareInit: %v", err)
	}
	if ioFile != "" {
		t.Errorf("ioFile = %q; want empty for an unset iofields file", ioFile)
	}

	wantArgs := []string{
		"dy 500", // defaults to dx
		"mix_isotropic 0",
		"time_step 3",
		"time_step_fract_num 0",
		"time_step_fract_den 10",
		"radt 0.5",
		"e_vert 3",
		"eta_levels '1.000000,0.500000,0.000000'",
		"history_interval_m 30",
		"history_interval_s 0",
		"auxhist7_interval_m 10",
		"auxhist7_interval_s 30",
		// prescribed heat flux branch
		"ra_lw_physics 0",
		"ra_sw_physics 0",
		"tke_heat_flux 0.1",
		"sf_surface_physics 0",
		"isfflx 2",
		// dx at the PBL threshold keeps the parametrization
		"bl_pbl_physics 1",
		"km_opt 4",
		"sf_sfclay_physics 1",
		`iofields_filename "'NONE_SPECIFIED'"`,
		"e_we 21",
		"e_sn 11",
	}
	for _, w := range wantArgs {
		if !strings.Contains(argStr, w) {
			t.Errorf("argument string missing %q\nargs: %s", w, argStr)
		}
	}

	// helper parameters are stripped before rendering
	for _, gone := range []string{"lx ", "ly ", "start_time", "end_time", "dt_f", "spec_hfx", "pbl_res", "radt_min", "surface_idx", "nz "} {
		if strings.HasPrefix(argStr, gone) || strings.Contains(argStr, " "+gone) {
			t.Errorf("argument string still carries helper parameter %q", gone)
		}
	}
}

func TestPrepareInitIOFieldsFile(t *testing.T) {
	o := &Orchestrator{cfg: initConfig(t), opts: Options{Mode: ModeInit, NoNamelistCheck: true}}
	c := initConfiguration()
	c.Params.Set("iofields_filename", namelist.Str("fields.txt"))
	s, err := o.deriveSpec(c)
	if err != nil {
		t.Fatal(err)
	}

	argStr, ioFile, err := o.prepareInit(s)
	if err != nil {
		t.Fatal(err)
	}
	if ioFile != "fields.txt" {
		t.Errorf("ioFile = %q", ioFile)
	}
	if !strings.Contains(argStr, `iofields_filename "'fields.txt'"`) {
		t.Errorf("argument string = %s", argStr)
	}
}

func TestPrepareInitGeneratedVerticalGrid(t *testing.T) {
	o := &Orchestrator{cfg: initConfig(t), opts: Options{Mode: ModeInit, NoNamelistCheck: true}}
	c := initConfiguration()
	c.Params.Delete("eta_levels")
	c.Params.Set("nz", namelist.Int(50))
	c.Params.Set("ztop", namelist.Float(2000))
	c.Params.Set("dz0", namelist.Float(20))
	c.Params.Set("dz_method", namelist.Int(0))
	s, err := o.deriveSpec(c)
	if err != nil {
		t.Fatal(err)
	}

	argStr, _, err := o.prepareInit(s)
	if err != nil {
		t.Fatalf("prepareInit: %v", err)
	}
	if !strings.Contains(argStr, "eta_levels '1.000000,") {
		t.Errorf("generated eta levels missing from arguments: %s", argStr)
	}
	if !strings.Contains(argStr, "e_vert 50") {
		t.Errorf("e_vert missing: %s", argStr)
	}
}

func TestPrepareInitMissingVerticalGrid(t *testing.T) {
	o := &Orchestrator{cfg: initConfig(t), opts: Options{Mode: ModeInit, NoNamelistCheck: true}}
	c := initConfiguration()
	c.Params.Delete("nz")
	s, err := o.deriveSpec(c)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = o.prepareInit(s)
	var pe *ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParamError, got %v", err)
	}
	if pe.Param != "nz" {
		t.Errorf("param = %q", pe.Param)
	}
}

func TestPrepareInitHelperCollision(t *testing.T) {
	cfg := initConfig(t)
	caseNL := filepath.Join(cfg.BuildPath, "WRF", "test", "em_les", namelist.FileName)
	content := strings.Replace(buildNamelistContent, "smooth_option = 0,", "smooth_option = 0,\n n_rep = 1,", 1)
	if err := os.WriteFile(caseNL, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	o := &Orchestrator{cfg: cfg, opts: Options{Mode: ModeInit, NoNamelistCheck: true}}
	s, err := o.deriveSpec(initConfiguration())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = o.prepareInit(s)
	var ce *namelist.CollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("want CollisionError, got %v", err)
	}
	if ce.Param != "n_rep" {
		t.Errorf("param = %q", ce.Param)
	}
}

func TestPrepareInitSplitOutput(t *testing.T) {
	cfg := initConfig(t)
	cfg.SplitOutputRes = 500
	o := &Orchestrator{cfg: cfg, opts: Options{Mode: ModeInit, NoNamelistCheck: true}}
	s, err := o.deriveSpec(initConfiguration())
	if err != nil {
		t.Fatal(err)
	}

	argStr, _, err := o.prepareInit(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(argStr, "frames_per_outfile 1") {
		t.Errorf("frames_per_outfile missing: %s", argStr)
	}
	if !strings.Contains(argStr, "frames_per_auxhist7 1") {
		t.Errorf("frames_per_auxhist7 missing: %s", argStr)
	}
}
