// Package pool batches accepted runs into scheduler submissions
// bounded by a slot capacity.
package pool

import "strings"

// Run is one repetition accepted for submission, carrying its slot
// cost and resource estimates.
type Run struct {
	ID         string
	Slots      int
	NX, NY     int // MPI tile, -1/-1 for serial runs
	RuntimeSec float64
	VMemMB     float64
}

// Pool accumulates runs awaiting a single scheduler submission.
// The slot sum may transiently exceed the capacity by exactly one
// run's worth; the overflow is resolved at flush time, never during
// accumulation.
type Pool struct {
	Runs    []Run
	slotSum int
}

// NewPool returns an empty pool.
func NewPool() *Pool { return &Pool{} }

func (p *Pool) add(r Run) {
	p.Runs = append(p.Runs, r)
	p.slotSum += r.Slots
}

// TotalSlots is the current slot sum of all members.
func (p *Pool) TotalSlots() int { return p.slotSum }

// Len returns the number of member runs.
func (p *Pool) Len() int { return len(p.Runs) }

// IDs returns the member run identifiers in first-accepted order.
func (p *Pool) IDs() []string {
	ids := make([]string, len(p.Runs))
	for i, r := range p.Runs {
		ids[i] = r.ID
	}
	return ids
}

// JobName derives the scheduler job name for the pooled submission.
func (p *Pool) JobName(pooled bool) string {
	if !pooled && len(p.Runs) == 1 {
		return p.Runs[0].ID
	}
	return "pool_" + strings.Join(p.IDs(), "_")
}

// MaxRuntimeSec is the requested wall clock of the pooled submission:
// the maximum of the members' runtimes, not the sum, because all jobs
// run under one shared time limit that each must fit inside.
func (p *Pool) MaxRuntimeSec() float64 {
	max := 0.0
	for _, r := range p.Runs {
		if r.RuntimeSec > max {
			max = r.RuntimeSec
		}
	}
	return max
}

// VMemPerSlotMB is the memory request per slot: an even share of the
// aggregate demand, rounded down to whole megabytes.
func (p *Pool) VMemPerSlotMB() int {
	if p.slotSum == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range p.Runs {
		sum += r.VMemMB
	}
	return int(sum / float64(p.slotSum))
}

// CheckSignalTime verifies that the graceful-stop signal would be sent
// strictly before the pool's wall-clock limit expires.
func (p *Pool) CheckSignalTime(signalSec float64) error {
	if p.MaxRuntimeSec() <= signalSec {
		return &SignalTimeError{RuntimeSec: p.MaxRuntimeSec(), SignalSec: signalSec}
	}
	return nil
}
