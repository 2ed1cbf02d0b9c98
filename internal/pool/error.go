package pool

import "fmt"

// CapacityError reports a single run whose slot cost exceeds the pool
// capacity. Such a run can never be submitted; the pool size must be
// raised in the config.
type CapacityError struct {
	Capacity int
	Required int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("pool size (%d) smaller than number of slots of current job (%d)", e.Capacity, e.Required)
}

// SignalTimeError reports a graceful-stop signal time at or beyond the
// requested wall-clock limit.
type SignalTimeError struct {
	RuntimeSec float64
	SignalSec  float64
}

func (e *SignalTimeError) Error() string {
	return fmt.Sprintf("requested runtime (%.0f s) is smaller than the time when the runtime limit signal is sent (%.0f s)", e.RuntimeSec, e.SignalSec)
}
