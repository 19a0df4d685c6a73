// Package budget tracks the cost vector and memory reservations of one
// top-level contract call and all of its nested calls.
package budget

import (
	"sync"

	"github.com/quartzlabs/quartzcore/kernel/contract"
)

// Budget enforces a cost ceiling and a memory ceiling. Charging past
// either ceiling fails eagerly; nothing is booked when the charge fails,
// so the caller can abort without unwinding the counters.
type Budget struct {
	mutex sync.Mutex

	used    contract.Limits
	ceiling contract.Limits

	memUsed    int64
	memCeiling int64
	memPeak    int64
}

// New builds a budget with the given cost and memory ceilings.
func New(ceiling contract.Limits, memCeiling int64) *Budget {
	return &Budget{
		ceiling:    ceiling,
		memCeiling: memCeiling,
	}
}

// Charge books delta against the cost ceiling. On overflow nothing is
// booked and ErrCostExceeded returns.
func (b *Budget) Charge(delta contract.Limits) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	next := b.used
	next.Add(delta)
	if next.Exceed(b.ceiling) {
		return contract.ErrCostExceeded
	}
	b.used = next
	return nil
}

// ChargeMemory reserves n bytes. On overflow nothing is booked and
// ErrMemoryExceeded returns.
func (b *Budget) ChargeMemory(n int64) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.memUsed+n > b.memCeiling {
		return contract.ErrMemoryExceeded
	}
	b.memUsed += n
	if b.memUsed > b.memPeak {
		b.memPeak = b.memUsed
	}
	return nil
}

// ReleaseMemory returns n reserved bytes at scope exit.
func (b *Budget) ReleaseMemory(n int64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.memUsed -= n
	if b.memUsed < 0 {
		b.memUsed = 0
	}
}

// Used reports the cost consumed so far.
func (b *Budget) Used() contract.Limits {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.used
}

// MemoryUsed reports the bytes currently reserved.
func (b *Budget) MemoryUsed() int64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.memUsed
}

// MemoryPeak reports the high water mark of reserved bytes.
func (b *Budget) MemoryPeak() int64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.memPeak
}
