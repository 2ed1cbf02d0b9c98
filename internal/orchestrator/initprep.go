package orchestrator

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/utils"
	"github.com/matzegoebel/run-wrf/internal/vgrid"
)

// prepareInit derives the physics and output settings of one
// configuration and renders them as the argument string consumed by the
// init job script. The helper parameters that are not namelist keys are
// stripped before rendering. Returns the argument string and the
// io-fields file name (empty if none is configured).
func (o *Orchestrator) prepareInit(s *runSpec) (argStr, ioFile string, err error) {
	cfg := o.cfg
	p := s.conf.Params

	if dx, ok := p.Get("dx"); ok {
		p.SetDefault("dy", dx)
	}

	if v, ok := p.Get("isotropic_res"); ok {
		iso, _ := v.AsFloat()
		if s.dx <= iso {
			p.Set("mix_isotropic", namelist.Int(1))
		} else {
			p.Set("mix_isotropic", namelist.Int(0))
		}
	}

	// split the timestep into the integer and fractional namelist keys
	dtInt := int64(math.Floor(s.dt))
	p.Set("time_step", namelist.Int(dtInt))
	p.Set("time_step_fract_num", namelist.Int(int64(math.Round((s.dt-float64(dtInt))*10))))
	p.Set("time_step_fract_den", namelist.Int(10))

	if !p.Has("radt") {
		radtMin, err := floatParam(s.conf, "radt_min")
		if err != nil {
			return "", "", err
		}
		// rule of thumb: radt(min) = 10 * dt(s)/60, but not below radt_min
		radt := 10 * float64(dtInt) / 60
		if radtMin > radt {
			radt = radtMin
		}
		p.Set("radt", namelist.Float(radt))
	}

	dz, err := resolveVerticalGrid(s)
	if err != nil {
		return "", "", err
	}

	// split output into one timestep per file at high resolution
	if cfg.SplitOutputRes > 0 && s.dx <= cfg.SplitOutputRes {
		p.Set("frames_per_outfile", namelist.Int(1))
		for _, st := range cfg.Streams {
			if st.Index != 0 {
				p.Set(fmt.Sprintf("frames_per_auxhist%d", st.Index), namelist.Int(1))
			}
		}
	}

	for _, st := range cfg.Streams {
		mins := math.Floor(st.IntervalMin)
		secs := math.Round((st.IntervalMin - mins) * 60)
		name := "history"
		if st.Index > 0 {
			name = fmt.Sprintf("auxhist%d", st.Index)
		}
		p.Set(name+"_interval_m", namelist.Int(int64(mins)))
		p.Set(name+"_interval_s", namelist.Int(int64(secs)))
	}

	// either prescribed surface heat fluxes or a land surface model
	if hfx, ok := p.Get("spec_hfx"); ok {
		p.Set("ra_lw_physics", namelist.Int(0))
		p.Set("ra_sw_physics", namelist.Int(0))
		p.Set("tke_heat_flux", hfx)
		p.Set("sf_surface_physics", namelist.Int(0))
		p.SetDefault("isfflx", namelist.Int(2))
	} else {
		p.SetDefault("isfflx", namelist.Int(1))
		p.Set("tke_heat_flux", namelist.Float(0))
		p.Set("tke_drag_coefficient", namelist.Float(0))
	}

	if err := resolveBoundaryLayer(s); err != nil {
		return "", "", err
	}

	if v, ok := p.Get("iofields_filename"); ok {
		name, _ := v.AsString()
		if name == "" {
			name = "NONE_SPECIFIED"
		} else {
			ioFile = name
		}
		// double quoting survives the shell and leaves the inner quotes
		// for the namelist
		p.Set("iofields_filename", namelist.Str(`"'`+name+`'"`))
	}

	// helper parameters must not collide with real namelist keys
	delArgs := append([]string{}, cfg.DelArgs...)
	for _, e := range cfg.ParamGrid.Entries {
		if e.IsComposite() {
			delArgs = append(delArgs, e.Name+"_idx")
		}
	}
	buildNL, err := namelist.ReadFile(filepath.Join(cfg.BuildPath, s.wrfDir, "test", cfg.IdealCase, namelist.FileName))
	if err != nil {
		return "", "", err
	}
	if err := namelist.CheckCollisions(buildNL, delArgs); err != nil {
		return "", "", err
	}

	argsClean := p.Clone()
	for _, d := range delArgs {
		argsClean.Delete(d)
	}

	merged := argsClean.Clone()
	merged.Merge(buildNL)
	if dz != nil {
		merged.Set("dz", namelist.Floats(dz))
	}
	if !o.opts.NoNamelistCheck {
		if err := namelist.Lint(merged); err != nil {
			return "", "", err
		}
	}
	return argsClean.ArgString(), ioFile, nil
}

// resolveVerticalGrid sets e_vert and eta_levels, generating the levels
// from the stretching parameters when they are not given explicitly.
// Returns the layer thicknesses when the grid was generated.
func resolveVerticalGrid(s *runSpec) ([]float64, error) {
	p := s.conf.Params
	nzVal, ok := p.Get("nz")
	if !ok {
		return nil, &ParamError{Config: s.conf.Name, Param: "nz", Reason: "is required"}
	}
	p.Set("e_vert", nzVal)

	if v, ok := p.Get("eta_levels"); ok {
		if fs, ok := v.AsFloats(); ok {
			p.Set("eta_levels", namelist.Str(vgrid.FormatEta(fs)))
		}
		return nil, nil
	}

	nz, _ := nzVal.AsInt()
	ztop, err := floatParam(s.conf, "ztop")
	if err != nil {
		return nil, err
	}
	dz0, err := floatParam(s.conf, "dz0")
	if err != nil {
		return nil, err
	}
	method, err := floatParam(s.conf, "dz_method")
	if err != nil {
		return nil, err
	}

	eta, dz, err := vgrid.CreateLevels(vgrid.Options{
		NZ:     int(nz),
		ZTop:   ztop,
		DZ0:    dz0,
		Method: vgrid.Method(int(method)),
	})
	if err != nil {
		return nil, err
	}
	utils.PrintMessage("Created vertical grid:")
	utils.PrintMessage("Lowest level at %.1f m", dz[0])
	utils.PrintMessage("thickness of uppermost layer: %.1f m", dz[len(dz)-2])
	p.Set("eta_levels", namelist.Str(vgrid.FormatEta(eta)))
	return dz, nil
}

// resolveBoundaryLayer switches between a PBL parametrization and LES
// depending on the resolution threshold and picks a compatible surface
// layer scheme.
func resolveBoundaryLayer(s *runSpec) error {
	p := s.conf.Params
	pblRes, err := floatParam(s.conf, "pbl_res")
	if err != nil {
		return err
	}

	var pblScheme int64
	if s.dx >= pblRes {
		if v, ok := p.Get("bl_pbl_physics"); ok {
			pblScheme, _ = v.AsInt()
		}
		p.SetDefault("km_opt", namelist.Int(4))
	} else {
		pblScheme = 0
		p.SetDefault("km_opt", namelist.Int(2))
		p.SetDefault("diff_opt", namelist.Int(2))
	}
	p.Set("bl_pbl_physics", namelist.Int(pblScheme))

	if !p.Has("sf_sfclay_physics") {
		var sfclay int64
		switch {
		case pblSchemeHasSfclay(pblScheme):
			sfclay = pblScheme
		case pblScheme == 6:
			sfclay = 5
		default:
			sfclay = 1
		}
		p.Set("sf_sfclay_physics", namelist.Int(sfclay))
	}
	return nil
}

// pblSchemeHasSfclay reports whether the PBL scheme has a surface layer
// scheme with the same index.
func pblSchemeHasSfclay(scheme int64) bool {
	switch scheme {
	case 1, 2, 3, 4, 5, 7, 10:
		return true
	}
	return false
}
