package resource

import (
	"os"
	"path/filepath"

	"github.com/matzegoebel/run-wrf/internal/namelist"
	"github.com/matzegoebel/run-wrf/internal/utils"
)

// FindIdenticalRuns scans the search paths for run directories whose
// namelist matches the one in refDir (time-window keys excluded, see
// namelist.Identical). Used to mine resource statistics from prior
// runs of the same setup.
func FindIdenticalRuns(refDir string, searchPaths []string) []string {
	ref, err := namelist.ReadFile(filepath.Join(refDir, namelist.FileName))
	if err != nil {
		utils.PrintDebug("no reference namelist in %s: %v", refDir, err)
		return nil
	}

	var identical []string
	for _, searchPath := range searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(searchPath, e.Name())
			candidate, err := namelist.ReadFile(filepath.Join(dir, namelist.FileName))
			if err != nil {
				continue
			}
			if namelist.Identical(ref, candidate) {
				identical = append(identical, dir)
				utils.PrintMessage("%s has same namelist parameters", dir)
			}
		}
	}
	return identical
}
