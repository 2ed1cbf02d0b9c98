package runlog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// UsageLogName is the default file holding saved `qstat -j $JOB_ID`
// output inside a run directory.
const UsageLogName = "qstat.info"

// ParseUsage extracts the usage statistics line from a saved qstat
// job report. The usage line has the form
//
//	usage    1:  cpu=..., mem=..., io=..., vmem=1.2G, maxvmem=1.5G
func ParseUsage(path string) (map[string]string, error) {
	lines, err := utils.ReadLines(path)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "usage") {
			continue
		}
		idx := strings.Index(trimmed, ":")
		if idx < 0 {
			continue
		}
		usage := make(map[string]string)
		for _, field := range strings.Split(trimmed[idx+1:], ",") {
			kv := strings.SplitN(strings.TrimSpace(field), "=", 2)
			if len(kv) == 2 {
				usage[kv[0]] = kv[1]
			}
		}
		return usage, nil
	}
	return nil, fmt.Errorf("no usage line in %s", path)
}

// MemToMB normalizes a scheduler memory report like "850M" or "1.5G"
// to megabytes. The environment reports two incompatible units, so
// values must be brought to a common one before comparing.
func MemToMB(mem string) (float64, bool) {
	for _, unit := range []struct {
		suffix string
		factor float64
	}{{"M", 1}, {"G", 1000}} {
		if idx := strings.Index(mem, unit.suffix); idx >= 0 {
			v, err := strconv.ParseFloat(mem[:idx], 64)
			if err != nil {
				return 0, false
			}
			return v * unit.factor, true
		}
	}
	return 0, false
}

// MaxVMemMB scans the given run directories for saved usage reports and
// returns the strict maximum of their peak virtual memory, in MB.
// The second result is false when no directory had a usable report.
func MaxVMemMB(runs []string, logfile string) (float64, bool) {
	if logfile == "" {
		logfile = UsageLogName
	}
	found := false
	max := 0.0
	for _, r := range runs {
		usage, err := ParseUsage(r + "/" + logfile)
		if err != nil {
			continue
		}
		raw, ok := usage["maxvmem"]
		if !ok {
			continue
		}
		mb, ok := MemToMB(raw)
		if !ok {
			continue
		}
		if !found || mb > max {
			max = mb
			found = true
		}
	}
	return max, found
}
