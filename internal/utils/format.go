package utils

import (
	"fmt"
	"math"
)

// FormatHMS formats a duration in seconds as HHH:MM:SS, the wall-clock
// format accepted by both qsub -l h_rt and sbatch --time.
func FormatHMS(seconds float64) string {
	total := int64(seconds)
	hours := total / 3600
	rem := total % 3600
	minutes := rem / 60
	secs := rem % 60
	return fmt.Sprintf("%03d:%02d:%02d", hours, minutes, secs)
}

// FormatMB formats a memory amount in megabytes with one decimal place.
func FormatMB(mb float64) string {
	return fmt.Sprintf("%.1fM", mb)
}

// RoundMB rounds a megabyte value to the nearest integer for scheduler flags.
func RoundMB(mb float64) int {
	return int(math.Round(mb))
}
