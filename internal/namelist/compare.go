package namelist

import "strings"

// ignoreParams are the time-window keys excluded from identical-run
// detection: two runs that differ only in their simulated time span are
// still comparable for resource estimation.
var ignoreParams = map[string]struct{}{
	"start_year":   {},
	"start_month":  {},
	"start_day":    {},
	"start_hour":   {},
	"start_minute": {},
	"start_second": {},
	"end_year":     {},
	"end_month":    {},
	"end_day":      {},
	"end_hour":     {},
	"end_minute":   {},
	"end_second":   {},
	"run_hours":    {},
}

func ignored(key string) bool {
	if _, ok := ignoreParams[key]; ok {
		return true
	}
	// output stream naming differs per run ID by construction
	return strings.HasSuffix(key, "_outname")
}

// Identical reports whether two namelists describe the same simulation
// setup, ignoring the time-window keys above. Every non-ignored key
// present in either map must be present and equal in both; a key missing
// on one side is a mismatch, not equal-by-default.
func Identical(a, b *Params) bool {
	for _, k := range a.Keys() {
		if ignored(k) {
			continue
		}
		av, _ := a.Get(k)
		bv, ok := b.Get(k)
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	for _, k := range b.Keys() {
		if ignored(k) {
			continue
		}
		if !a.Has(k) {
			return false
		}
	}
	return true
}
