package budget

import (
	"errors"
	"testing"

	"github.com/quartzlabs/quartzcore/kernel/contract"
)

func TestChargeCost(t *testing.T) {
	b := New(contract.Limits{Runtime: 100, ReadCnt: 10, ReadLen: 100, WriteCnt: 10, WriteLen: 100}, 1024)

	if err := b.Charge(contract.Limits{Runtime: 60}); err != nil {
		t.Fatal(err)
	}
	if err := b.Charge(contract.Limits{Runtime: 40}); err != nil {
		t.Fatal(err)
	}
	err := b.Charge(contract.Limits{Runtime: 1})
	if !errors.Is(err, contract.ErrCostExceeded) {
		t.Fatalf("expect ErrCostExceeded, got %v", err)
	}
	// failed charge books nothing
	if got := b.Used().Runtime; got != 100 {
		t.Fatalf("expect runtime 100 after failed charge, got %d", got)
	}
}

func TestChargeAnyDimension(t *testing.T) {
	b := New(contract.Limits{Runtime: 1000, ReadCnt: 2, ReadLen: 1000, WriteCnt: 2, WriteLen: 1000}, 1024)

	if err := b.Charge(contract.Limits{ReadCnt: 2}); err != nil {
		t.Fatal(err)
	}
	err := b.Charge(contract.Limits{Runtime: 1, ReadCnt: 1})
	if !errors.Is(err, contract.ErrCostExceeded) {
		t.Fatalf("expect ErrCostExceeded on read count, got %v", err)
	}
}

func TestChargeMemory(t *testing.T) {
	b := New(contract.MaxLimits, 100)

	if err := b.ChargeMemory(80); err != nil {
		t.Fatal(err)
	}
	err := b.ChargeMemory(21)
	if !errors.Is(err, contract.ErrMemoryExceeded) {
		t.Fatalf("expect ErrMemoryExceeded, got %v", err)
	}
	if got := b.MemoryUsed(); got != 80 {
		t.Fatalf("expect 80 bytes booked after failed charge, got %d", got)
	}

	b.ReleaseMemory(30)
	if err := b.ChargeMemory(21); err != nil {
		t.Fatal(err)
	}
	if got := b.MemoryPeak(); got != 80 {
		t.Fatalf("expect peak 80, got %d", got)
	}
}

func TestReleaseClampsAtZero(t *testing.T) {
	b := New(contract.MaxLimits, 100)
	b.ReleaseMemory(10)
	if got := b.MemoryUsed(); got != 0 {
		t.Fatalf("expect 0, got %d", got)
	}
}
