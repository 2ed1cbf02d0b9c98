package namelist

import "testing"

func setupPair() (*Params, *Params) {
	a := NewParams()
	a.Set("mp_physics", Int(2))
	a.Set("dx", Int(500))
	a.Set("start_hour", Int(0))
	a.Set("history_outname", Str("out/wrfout_a"))
	b := a.Clone()
	return a, b
}

func TestIdenticalIgnoresTimeWindowAndOutnames(t *testing.T) {
	a, b := setupPair()
	b.Set("start_hour", Int(12))
	b.Set("end_year", Int(2021))
	b.Set("history_outname", Str("out/wrfout_b"))
	b.Set("auxhist7_outname", Str("out/fast_b"))
	if !Identical(a, b) {
		t.Error("runs differing only in time window and output names must be identical")
	}
}

func TestIdenticalDetectsParameterChange(t *testing.T) {
	a, b := setupPair()
	b.Set("mp_physics", Int(5))
	if Identical(a, b) {
		t.Error("differing mp_physics must not be identical")
	}
}

func TestIdenticalMissingKeyIsMismatch(t *testing.T) {
	a, b := setupPair()
	b.Set("km_opt", Int(2))
	if Identical(a, b) {
		t.Error("extra key on one side must not be identical")
	}
	if Identical(b, a) {
		t.Error("comparison must be symmetric for missing keys")
	}
}
