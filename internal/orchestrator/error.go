package orchestrator

import (
	"errors"
	"fmt"
)

// ErrInitFailed indicates the model initialization did not write its
// success marker.
var ErrInitFailed = errors.New("initialization failed")

// FlagError reports an unusable combination of command-line options.
type FlagError struct {
	Reason string
}

func (e *FlagError) Error() string { return e.Reason }

// ParamError reports a missing or unusable configuration parameter for
// one grid configuration.
type ParamError struct {
	Config string
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("config %s: parameter %s %s", e.Config, e.Param, e.Reason)
}

// TimeWindowError reports an end time at or before the start time.
type TimeWindowError struct {
	Start, End string
}

func (e *TimeWindowError) Error() string {
	return fmt.Sprintf("selected end time %s smaller or equal start time %s", e.End, e.Start)
}

// DomainSizeError reports a domain extent that is not a multiple of
// the resolved grid size when an exact multiple was requested.
type DomainSizeError struct {
	Axis string
}

func (e *DomainSizeError) Error() string {
	return fmt.Sprintf("domain size must be multiple of l%s", e.Axis)
}
