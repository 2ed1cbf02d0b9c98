package namelist

import (
	"errors"
	"fmt"
)

// ErrNamelistNotFound indicates the namelist file does not exist.
var ErrNamelistNotFound = errors.New("namelist file not found")

// CollisionError reports an orchestrator-managed parameter that is
// already defined in the model's own namelist file.
type CollisionError struct {
	Param string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("parameter %s managed by run-wrf already defined in %s! Rename this parameter", e.Param, FileName)
}

// LintError reports critical inconsistencies between namelist settings.
type LintError struct {
	Problems []string
}

func (e *LintError) Error() string {
	return fmt.Sprintf("critical inconsistencies found in namelist settings (%d problems); fix the issues or disable the namelist check", len(e.Problems))
}
