package vgrid

import (
	"math"
	"testing"
)

func checkGrid(t *testing.T, eta, dz []float64, ztop float64) {
	t.Helper()
	if eta[0] != 1 || eta[len(eta)-1] != 0 {
		t.Errorf("eta boundaries = %v, %v; want 1, 0", eta[0], eta[len(eta)-1])
	}
	for i := 1; i < len(eta); i++ {
		if eta[i] >= eta[i-1] {
			t.Fatalf("eta not strictly decreasing at %d: %v >= %v", i, eta[i], eta[i-1])
		}
	}
	if len(dz) != len(eta)-1 {
		t.Fatalf("len(dz) = %d with %d levels", len(dz), len(eta))
	}
	sum := 0.0
	for _, d := range dz {
		if d <= 0 {
			t.Fatalf("non-positive layer thickness %v", d)
		}
		sum += d
	}
	if math.Abs(sum-ztop) > 1e-3 {
		t.Errorf("layers sum to %v; want %v", sum, ztop)
	}
}

func TestCreateLevelsGeometric(t *testing.T) {
	opts := Options{NZ: 60, ZTop: 5000, DZ0: 20, Method: Geometric}
	eta, dz, err := CreateLevels(opts)
	if err != nil {
		t.Fatalf("CreateLevels: %v", err)
	}
	if len(eta) != 60 {
		t.Fatalf("got %d levels, want 60", len(eta))
	}
	checkGrid(t, eta, dz, opts.ZTop)
	if math.Abs(dz[0]-20) > 1e-6 {
		t.Errorf("lowest layer = %v; want 20", dz[0])
	}
	// stretched grid grows monotonically
	for i := 1; i < len(dz); i++ {
		if dz[i] < dz[i-1]-1e-9 {
			t.Fatalf("layer %d shrinks: %v < %v", i, dz[i], dz[i-1])
		}
	}
}

func TestCreateLevelsGeometricDerivedCount(t *testing.T) {
	opts := Options{ZTop: 5000, DZ0: 20, DZMax: 200, Method: Geometric}
	eta, dz, err := CreateLevels(opts)
	if err != nil {
		t.Fatalf("CreateLevels: %v", err)
	}
	checkGrid(t, eta, dz, opts.ZTop)
	for i, d := range dz {
		if d > opts.DZMax+1e-6 {
			t.Errorf("layer %d = %v exceeds dzmax %v", i, d, opts.DZMax)
		}
	}
}

func TestCreateLevelsTanh(t *testing.T) {
	opts := Options{ZTop: 5000, DZ0: 20, DZMax: 400, D1: 200, Method: Tanh}
	eta, dz, err := CreateLevels(opts)
	if err != nil {
		t.Fatalf("CreateLevels: %v", err)
	}
	checkGrid(t, eta, dz, opts.ZTop)
	// constant bottom layer of D1/DZ0 levels
	for i := 0; i < 10; i++ {
		if math.Abs(dz[i]-20) > 1e-9 {
			t.Errorf("bottom layer %d = %v; want 20", i, dz[i])
		}
	}
	// the stretching layer ramps from dz0 up to about dzmax
	if dz[11] <= dz[10] {
		t.Errorf("stretching layer does not grow: dz[11] = %v, dz[10] = %v", dz[11], dz[10])
	}
	if last := dz[len(dz)-1]; last < 350 {
		t.Errorf("uppermost layer = %v; want close to dzmax", last)
	}
}

func TestCreateLevelsTanhFixedCount(t *testing.T) {
	opts := Options{NZ: 40, ZTop: 5000, DZ0: 20, D1: 200, Method: Tanh}
	eta, dz, err := CreateLevels(opts)
	if err != nil {
		t.Fatalf("CreateLevels: %v", err)
	}
	if len(eta) != 40 {
		t.Fatalf("got %d levels, want 40", len(eta))
	}
	checkGrid(t, eta, dz, opts.ZTop)
}

func TestCreateLevelsErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"unknown method", Options{NZ: 40, ZTop: 5000, DZ0: 20, Method: Method(1)}},
		{"d1 not a multiple of dz0", Options{NZ: 40, ZTop: 5000, DZ0: 30, D1: 100, Method: Tanh}},
		{"neither nz nor dzmax", Options{ZTop: 5000, DZ0: 20, Method: Geometric}},
		{"too few levels", Options{NZ: 2, ZTop: 5000, DZ0: 20, Method: Geometric}},
	}
	for _, c := range cases {
		if _, _, err := CreateLevels(c.opts); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}

func TestFormatEta(t *testing.T) {
	got := FormatEta([]float64{1, 0.5, 0})
	want := "'1.000000,0.500000,0.000000'"
	if got != want {
		t.Errorf("FormatEta = %s; want %s", got, want)
	}
}
