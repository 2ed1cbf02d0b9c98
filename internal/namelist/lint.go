package namelist

import (
	"github.com/matzegoebel/run-wrf/internal/utils"
)

func getFloat(nl *Params, key string) (float64, bool) {
	v, ok := nl.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

func getInt(nl *Params, key string, def int64) int64 {
	v, ok := nl.Get(key)
	if !ok {
		return def
	}
	i, ok := v.AsInt()
	if !ok {
		return def
	}
	return i
}

func contains(vals []int64, v int64) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

// Lint checks the physics consistency of the assembled namelist and
// prints warnings for questionable parameter combinations. Hard
// inconsistencies are collected and returned as a LintError.
func Lint(nl *Params) error {
	var problems []string
	fail := func(msg string) {
		utils.PrintError("%s", msg)
		problems = append(problems, msg)
	}

	dx, ok := getFloat(nl, "dx")
	if !ok {
		fail("namelist check requires dx to be set")
		return &LintError{Problems: problems}
	}
	utils.PrintMessage("Check consistency of namelist settings. Horizontal grid spacing: dx=%.1f m", dx)

	// timestep rule of thumb: dt(s) = 6 * dx(km)
	dt := float64(getInt(nl, "time_step", 0)) +
		float64(getInt(nl, "time_step_fract_num", 0))/float64(getInt(nl, "time_step_fract_den", 1))
	if dt > 6*dx/1000 {
		utils.PrintWarning("time step is larger than recommended; this may cause numerical instabilities. Recommendation: dt(s) = 6 * dx(km)")
	}

	// vertical grid
	var dzMax, dz0 float64
	haveDz := false
	if dzv, ok := nl.Get("dz"); ok {
		if dzs, ok := dzv.AsFloats(); ok && len(dzs) > 0 {
			haveDz = true
			dz0 = dzs[0]
			for _, d := range dzs {
				if d > dzMax {
					dzMax = d
				}
			}
		}
	}
	if haveDz {
		if dzMax > dx {
			fail("there are levels with dz > dx; use more vertical levels, a lower model top or a higher dx")
		}
		if dzMax > 1000 {
			fail("there are levels with dz > 1000 m; use more vertical levels or a lower model top")
		}
	}

	// microphysics: graupel schemes at cloud-resolving resolution
	mp := getInt(nl, "mp_physics", 0)
	noGraupel := contains([]int64{1, 3, 4, 14}, mp)
	if noGraupel && dx <= 4000 {
		utils.PrintWarning("microphysics scheme with graupel necessary at cloud-resolving resolution; avoid mp_physics settings 1,3,4,14")
	} else if !noGraupel && dx >= 10000 {
		utils.PrintHint("microphysics scheme with graupel not necessary for grid spacings above 10 km; consider mp_physics 1,3,4 or 14")
	}

	// PBL scheme vs LES
	pbl := getInt(nl, "bl_pbl_physics", 0)
	kmOpt := getInt(nl, "km_opt", 0)
	diffOpt := getInt(nl, "diff_opt", 0)
	if pbl == 0 && dx >= 500 {
		fail("PBL scheme necessary for dx > 500 m")
	} else if pbl != 0 {
		if dx <= 100 {
			fail("no PBL scheme necessary for dx < 100 m, use LES")
		} else if haveDz && dz0 > 100 {
			utils.PrintWarning("first vertical level should be within the surface layer (max. 100 m); current lowest level at %.2f m", dz0)
		}
	}
	if pbl == 0 && dx <= 500 { // LES
		if !contains([]int64{2, 3}, kmOpt) {
			fail("need 3D SGS turbulence scheme for LES; choose km_opt 2 or 3")
		}
		if diffOpt != 2 {
			fail("LES requires horizontal diffusion in physical space (diff_opt=2)")
		}
		if sfc := getInt(nl, "sf_sfclay_physics", 0); !contains([]int64{0, 1, 2}, sfc) {
			utils.PrintWarning("surface layer scheme %d not recommended for LES; rather use setting 1 or 2", sfc)
		}
		if getInt(nl, "mix_isotropic", 0) != 1 {
			utils.PrintWarning("isotropic mixing (mix_isotropic=1) recommended for LES")
		}
	}
	if contains([]int64{2, 3}, kmOpt) && diffOpt != 2 {
		fail("horizontal diffusion in physical space (diff_opt=2) needed for 3D SGS turbulence scheme (km_opt=2 or 3)")
	}
	if kmOpt != 4 && dx > 2000 {
		utils.PrintWarning("for dx > 2000 m, SGS turbulent mixing should be based on 2D deformation (km_opt=4)")
	}

	// cumulus
	cu := getInt(nl, "cu_physics", 0)
	switch {
	case dx >= 10000 && cu == 0:
		utils.PrintWarning("for dx >= 10 km, the use of a cumulus scheme is strongly recommended")
	case dx <= 4000 && cu != 0:
		utils.PrintWarning("for dx <= 4 km, a cumulus scheme is probably not needed")
	case dx > 4000 && dx < 10000 && !contains([]int64{3, 5, 11, 14}, cu):
		utils.PrintWarning("grid spacing lies in the gray zone for cumulus convection; consider a scale-aware cumulus parametrization (cu_physics 3, 5, 11 or 14)")
	}

	// advection options
	if dx > 100 && dx < 1000 {
		for _, adv := range []string{"moist_adv_opt", "scalar_adv_opt", "momentum_adv_opt"} {
			if getInt(nl, adv, 1) < 2 {
				utils.PrintWarning("monotonic or non-oscillatory advection options are recommended for 100 m < dx < 1 km (moist/scalar/momentum_adv_opt >= 2)")
				break
			}
		}
	}

	// surface fluxes
	isfflx := getInt(nl, "isfflx", 1)
	for _, flux := range []string{"tke_drag_coefficient", "tke_heat_flux"} {
		useFluxes := []int64{0}
		if flux == "tke_heat_flux" {
			useFluxes = []int64{0, 2}
		}
		fluxVal, _ := getFloat(nl, flux)
		if contains(useFluxes, isfflx) && fluxVal == 0 {
			utils.PrintWarning("%s=0, although it is used as surface flux for isfflx=%d", flux, isfflx)
		}
	}

	if len(problems) > 0 {
		return &LintError{Problems: problems}
	}
	return nil
}
