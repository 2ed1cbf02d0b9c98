// Package namelist reads, compares and patches WRF namelist parameter
// files and defines the typed value union used for all parameter maps.
package namelist

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the namelist value union.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindBool
	KindString
	KindFloatList
)

// Value is one namelist parameter value. Namelist overrides are
// heterogeneous, so instead of bare interface{} maps every value is a
// tagged union with explicit conversion rules: floats with an integral
// value are normalized to integers.
type Value struct {
	kind  ValueKind
	i     int64
	f     float64
	b     bool
	s     string
	flist []float64
}

// Int constructs an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float constructs a float value. Integral floats collapse to KindInt.
func Float(v float64) Value {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
		return Value{kind: KindInt, i: int64(v)}
	}
	return Value{kind: KindFloat, f: v}
}

// Bool constructs a boolean value (rendered as .true./.false.).
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Str constructs a string value.
func Str(v string) Value { return Value{kind: KindString, s: v} }

// Floats constructs a sequence-of-float value (e.g. eta_levels).
func Floats(v []float64) Value { return Value{kind: KindFloatList, flist: v} }

// Parse converts a raw namelist token into a typed Value.
// Tried in order: bool literal, integer, float, comma list of floats,
// quoted or bare string.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(strings.Trim(s, ".")) {
	case "true":
		if strings.HasPrefix(s, ".") {
			return Bool(true)
		}
	case "false":
		if strings.HasPrefix(s, ".") {
			return Bool(false)
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		fs := make([]float64, 0, len(parts))
		ok := true
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				ok = false
				break
			}
			fs = append(fs, f)
		}
		if ok && len(fs) > 0 {
			return Floats(fs)
		}
	}
	return Str(strings.Trim(s, `'"`))
}

// Kind returns the discriminator of the value.
func (v Value) Kind() ValueKind { return v.kind }

// AsInt returns the integer content and whether the value is an integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}
	return 0, false
}

// AsFloat returns the numeric content as float64 for KindInt and KindFloat.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// AsString returns the string content and whether the value is a string.
func (v Value) AsString() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return "", false
}

// AsFloats returns the float-list content.
func (v Value) AsFloats() ([]float64, bool) {
	if v.kind == KindFloatList {
		return v.flist, true
	}
	return nil, false
}

// String renders the value in namelist syntax.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		if v.b {
			return ".true."
		}
		return ".false."
	case KindFloatList:
		parts := make([]string, len(v.flist))
		for i, f := range v.flist {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, ",")
	default:
		return v.s
	}
}

// Equal compares two values. Numeric values compare by their numeric
// content regardless of the original kind, so "5" and "5.0" are equal.
func (v Value) Equal(o Value) bool {
	vf, vok := v.AsFloat()
	of, ook := o.AsFloat()
	if vok && ook {
		return vf == of
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindFloatList:
		if len(v.flist) != len(o.flist) {
			return false
		}
		for i := range v.flist {
			if v.flist[i] != o.flist[i] {
				return false
			}
		}
		return true
	}
	return false
}

// GoString makes test failures readable.
func (v Value) GoString() string {
	return fmt.Sprintf("namelist.Value(%s)", v.String())
}
