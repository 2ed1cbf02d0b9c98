package pool

// Batcher drives the pooling state machine: it accepts runs one by one
// and decides when the pending pool must be flushed to the scheduler.
// Every accepted run appears in exactly one flushed pool, in
// first-accepted order.
type Batcher struct {
	capacity int
	pooling  bool
	pending  *Pool
}

// NewBatcher returns a batcher with the given slot capacity. With
// pooling disabled every accepted run flushes its own singleton pool
// immediately and the capacity is ignored.
func NewBatcher(capacity int, pooling bool) *Batcher {
	return &Batcher{capacity: capacity, pooling: pooling, pending: NewPool()}
}

// Pending returns the not-yet-flushed pool (never nil).
func (b *Batcher) Pending() *Pool { return b.pending }

// Accept adds a run and returns the pools that must be submitted now.
// last marks the final run of the overall batch, which forces a flush
// regardless of capacity so the tail of the batch is never dropped.
func (b *Batcher) Accept(r Run, last bool) ([]*Pool, error) {
	b.pending.add(r)

	if !b.pooling {
		p := b.pending
		b.pending = NewPool()
		return []*Pool{p}, nil
	}
	if b.pending.slotSum >= b.capacity || last {
		return b.flush(last)
	}
	return nil, nil
}

// FlushRemaining force-flushes the pending pool. Used when the final
// run of the batch was skipped upstream but earlier runs are still
// waiting for submission.
func (b *Batcher) FlushRemaining() ([]*Pool, error) {
	if b.pending.Len() == 0 {
		return nil, nil
	}
	return b.flush(true)
}

// flush submits the pending pool, applying the overflow-split rule: if
// the slot sum strictly exceeds the capacity, the most-recently
// accepted run is removed and seeds the next pool. When flushing the
// end of the batch the carried run is flushed as well, in an extra
// round, instead of being lost.
func (b *Batcher) flush(last bool) ([]*Pool, error) {
	var out []*Pool
	for {
		p := b.pending
		if p.Len() == 0 {
			break
		}

		var carry *Run
		if p.slotSum > b.capacity {
			if p.Len() > 1 {
				c := p.Runs[p.Len()-1]
				p.Runs = p.Runs[:p.Len()-1]
				p.slotSum -= c.Slots
				carry = &c
			} else {
				return nil, &CapacityError{Capacity: b.capacity, Required: p.Runs[0].Slots}
			}
		}

		out = append(out, p)
		b.pending = NewPool()
		if carry != nil {
			b.pending.add(*carry)
		}
		if !last || carry == nil {
			break
		}
	}
	return out, nil
}
