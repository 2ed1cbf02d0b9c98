package pool

import (
	"errors"
	"testing"
)

func TestPoolJobName(t *testing.T) {
	p := NewPool()
	p.add(Run{ID: "a", Slots: 4})
	if got := p.JobName(false); got != "a" {
		t.Errorf("single non-pooled JobName = %q; want \"a\"", got)
	}
	if got := p.JobName(true); got != "pool_a" {
		t.Errorf("single pooled JobName = %q; want \"pool_a\"", got)
	}
	p.add(Run{ID: "b", Slots: 4})
	if got := p.JobName(false); got != "pool_a_b" {
		t.Errorf("multi-run JobName = %q; want \"pool_a_b\"", got)
	}
}

func TestPoolAggregates(t *testing.T) {
	p := NewPool()
	p.add(Run{ID: "a", Slots: 4, RuntimeSec: 600, VMemMB: 4000})
	p.add(Run{ID: "b", Slots: 2, RuntimeSec: 900, VMemMB: 1500})

	if got := p.TotalSlots(); got != 6 {
		t.Errorf("TotalSlots = %d; want 6", got)
	}
	if got := p.MaxRuntimeSec(); got != 900 {
		t.Errorf("MaxRuntimeSec = %v; want 900 (max, not sum)", got)
	}
	if got := p.VMemPerSlotMB(); got != 916 {
		t.Errorf("VMemPerSlotMB = %d; want 916", got)
	}
}

func TestPoolCheckSignalTime(t *testing.T) {
	p := NewPool()
	p.add(Run{ID: "a", Slots: 1, RuntimeSec: 300})

	if err := p.CheckSignalTime(60); err != nil {
		t.Errorf("signal well inside the limit, got %v", err)
	}
	err := p.CheckSignalTime(600)
	var ste *SignalTimeError
	if !errors.As(err, &ste) {
		t.Fatalf("want SignalTimeError, got %v", err)
	}
	if ste.RuntimeSec != 300 || ste.SignalSec != 600 {
		t.Errorf("error fields = %+v", ste)
	}

	// a signal at exactly the limit would leave no time to run at all
	if err := p.CheckSignalTime(300); !errors.As(err, &ste) {
		t.Errorf("signal equal to the limit must be rejected, got %v", err)
	}
}
