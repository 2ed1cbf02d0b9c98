package lifecycle

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzegoebel/run-wrf/internal/utils"
)

// BackupDir moves dir into bakRoot under its own name with a _bak_N
// suffix, N being the first free index. Returns the backup path.
func BackupDir(dir, bakRoot string) (string, error) {
	return backup(dir, bakRoot, "_bak_", utils.DirExists)
}

// BackupFile moves file into bakRoot with a _bak_N suffix.
func BackupFile(file, bakRoot string) (string, error) {
	return backup(file, bakRoot, "_bak_", utils.FileExists)
}

// StashRestartOutput moves an output file of a run being restarted
// into bakRoot with a _rst_N suffix, keeping every earlier segment.
func StashRestartOutput(file, bakRoot string) (string, error) {
	return backup(file, bakRoot, "_rst_", utils.FileExists)
}

func backup(src, bakRoot, suffix string, exists func(string) bool) (string, error) {
	if err := os.MkdirAll(bakRoot, utils.PermDir); err != nil {
		return "", err
	}
	base := filepath.Join(bakRoot, filepath.Base(src)+suffix)
	n := 0
	for exists(base + strconv.Itoa(n)) {
		n++
	}
	target := base + strconv.Itoa(n)
	if err := os.Rename(src, target); err != nil {
		return "", err
	}
	return target, nil
}
