// Package vgrid generates stretched vertical grids for WRF. Levels are
// built in height space and converted to the pressure-based eta
// coordinate through the standard atmosphere.
package vgrid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Method selects the stretching function.
type Method int

const (
	// Geometric grows the spacing by a constant factor from dz0 at the
	// surface up to the domain top.
	Geometric Method = 0
	// Tanh builds up to three layers: constant dz0, a hyperbolic
	// stretching layer, and constant dzmax.
	Tanh Method = 3
)

// standard atmosphere, troposphere segment
const (
	gravity   = 9.80665  // m/s2
	rDry      = 287.047  // J/(kg K)
	lapseRate = 0.0065   // K/m
	seaLevelT = 288.15   // K
)

// Options configures level generation. NZ or DZMax may be zero, in
// which case the missing one is derived, but not both.
type Options struct {
	NZ     int     // number of levels
	ZTop   float64 // domain top (m)
	DZ0    float64 // spacing of the lowest layer (m)
	DZMax  float64 // spacing cap near the top (m), 0 for none
	Method Method
	D1     float64 // depth of the constant bottom layer (m), tanh only
	Alpha  float64 // tanh stretching coefficient, 0 means 1
	P0     float64 // surface pressure (hPa), 0 means 1000
}

// CreateLevels returns the eta levels (surface to top, 1 down to 0)
// and the layer thicknesses in meters (one fewer than levels).
func CreateLevels(opts Options) (eta, dz []float64, err error) {
	if opts.P0 == 0 {
		opts.P0 = 1000
	}
	var z []float64
	switch opts.Method {
	case Geometric:
		z, err = geometricLevels(opts)
	case Tanh:
		z, err = tanhLevels(opts)
	default:
		return nil, nil, fmt.Errorf("vertical grid method %d not implemented", opts.Method)
	}
	if err != nil {
		return nil, nil, err
	}

	ptop := pressureStd(opts.ZTop, opts.P0)
	p := make([]float64, len(z))
	for i, zi := range z {
		p[i] = pressureStd(zi, opts.P0)
	}
	psfc := p[0]

	eta = make([]float64, len(z))
	for i := range p {
		eta[i] = (p[i] - ptop) / (psfc - ptop)
	}
	eta[0] = 1
	eta[len(eta)-1] = 0

	dz = make([]float64, len(z)-1)
	for i := range dz {
		dz[i] = z[i+1] - z[i]
	}
	return eta, dz, nil
}

// FormatEta renders the levels as the quoted comma list expected by
// the eta_levels namelist parameter.
func FormatEta(eta []float64) string {
	parts := make([]string, len(eta))
	for i, e := range eta {
		parts[i] = strconv.FormatFloat(e, 'f', 6, 64)
	}
	return "'" + strings.Join(parts, ",") + "'"
}

// pressureStd is the standard-atmosphere pressure at height z for a
// linear temperature profile, in the same unit as p0.
func pressureStd(z, p0 float64) float64 {
	return p0 * math.Pow(1-lapseRate*z/seaLevelT, gravity/(rDry*lapseRate))
}

// geometricLevels satisfies z(i+1) = dz0 + c*z(i) with z(0)=0 and
// z(nz-1)=ztop; the stretching factor c is the positive root of the
// resulting polynomial. If NZ is zero the level count is raised until
// the top spacing drops below DZMax.
func geometricLevels(opts Options) ([]float64, error) {
	nz := opts.NZ
	searchNZ := false
	if nz == 0 {
		if opts.DZMax == 0 {
			return nil, fmt.Errorf("geometric vertical grid: either nz or dzmax must be set")
		}
		nz = int(opts.ZTop / opts.DZMax)
		searchNZ = true
	}

	var c float64
	for {
		if nz < 3 {
			return nil, fmt.Errorf("too few vertical levels (%d)", nz)
		}
		c = stretchFactor(nz, opts.DZ0, opts.ZTop)
		if !searchNZ || opts.DZ0*math.Pow(c, float64(nz-2)) <= opts.DZMax {
			break
		}
		nz++
	}

	z := make([]float64, nz)
	for i := 0; i < nz-1; i++ {
		z[i+1] = opts.DZ0 + z[i]*c
	}
	if math.Abs(z[nz-1]-opts.ZTop) > 1e-3 {
		return nil, fmt.Errorf("uppermost level (%g) is not at ztop (%g)", z[nz-1], opts.ZTop)
	}
	return z, nil
}

// stretchFactor solves dz0 * (c^(nz-1) - 1)/(c - 1) = ztop for c > 0
// by bisection. The left side is monotone in c.
func stretchFactor(nz int, dz0, ztop float64) float64 {
	f := func(c float64) float64 {
		sum, pow := 0.0, 1.0
		for k := 0; k <= nz-2; k++ {
			sum += pow
			pow *= c
		}
		return dz0*sum - ztop
	}
	lo, hi := 1e-9, 2.0
	for f(hi) < 0 {
		hi *= 2
	}
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		if f(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

// tanhLevels builds the three-layer grid: constant DZ0 up to D1, a
// tanh stretching layer, then constant DZMax. With NZ zero the count
// is derived from DZMax; with DZMax zero the third layer is omitted.
func tanhLevels(opts Options) ([]float64, error) {
	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1
	}
	dzmin, dzmax, ztop := opts.DZ0, opts.DZMax, opts.ZTop

	n1f := opts.D1 / dzmin
	if n1f != math.Trunc(n1f) {
		return nil, fmt.Errorf("depth of layer 1 is not a multiple of its grid spacing")
	}
	n1 := int(n1f)

	var n2, n3 int
	var dzm float64
	switch {
	case opts.NZ == 0:
		if dzmax == 0 {
			return nil, fmt.Errorf("tanh vertical grid: either nz or dzmax must be set")
		}
		dzm = (dzmin + dzmax) / 2
		n2 = int(math.Ceil((ztop - opts.D1) / dzm))
		dzm = (ztop - opts.D1) / float64(n2)
		dzmax = 2*dzm - dzmin
	case dzmax == 0:
		n2 = opts.NZ - n1 - 1
		dzm = (ztop - opts.D1) / float64(n2)
	default:
		dzm = (dzmin + dzmax) / 2
		n2 = int(math.Round((ztop - opts.D1 + float64(n1-opts.NZ+1)*dzmax) / (dzm - dzmax)))
		n3 = opts.NZ - 1 - n2 - n1
		if n2 < 0 || n3 < 0 {
			return nil, fmt.Errorf("vertical grid creation failed")
		}
		ztop = opts.D1 + dzm*float64(n2) + dzmax*float64(n3)
	}
	if n2 <= 0 {
		return nil, fmt.Errorf("too few vertical levels")
	}

	dz := make([]float64, 0, n1+n2+n3)
	for i := 0; i < n1; i++ {
		dz = append(dz, dzmin)
	}
	a := (1 + float64(n2)) / 2
	for ind := 1; ind <= n2; ind++ {
		dz = append(dz, dzm+(dzmin-dzm)/math.Tanh(2*alpha)*math.Tanh(2*alpha*(float64(ind)-a)/(1-a)))
	}
	for i := 0; i < n3; i++ {
		dz = append(dz, dzmax)
	}

	z := make([]float64, len(dz)+1)
	for i, d := range dz {
		z[i+1] = z[i] + d
	}
	if math.Abs(z[len(z)-1]-ztop) > 1e-6*ztop {
		return nil, fmt.Errorf("vertical grid creation failed")
	}
	return z, nil
}
