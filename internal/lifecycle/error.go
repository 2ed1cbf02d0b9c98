package lifecycle

import (
	"errors"
	"fmt"
)

// ErrRestartPrep indicates the namelist of a restart run could not be
// rewritten.
var ErrRestartPrep = errors.New("failed to modify namelist values for restart")

// UnknownPolicyError reports an invalid -e option value.
type UnknownPolicyError struct {
	Value string
}

func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("value %q for -e option not defined", e.Value)
}
