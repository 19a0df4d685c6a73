package bridge

import (
	"github.com/gammazero/deque"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/sandbox"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// Frame is one live function invocation on the call stack.
type Frame struct {
	Contract principal.ContractIdentifier
	Function *contract.Function
	// Sender is the transaction sender visible to this frame. It carries
	// through cross-contract calls; AsContract rewrites it for the
	// duration of the closure.
	Sender principal.Principal
	// Caller is the immediate caller, the origin or the contract one
	// frame up.
	Caller principal.Principal
	// Scope is the transaction scope this frame reads and writes.
	Scope *sandbox.Cache

	code   *contract.Contract
	argMem int64
}

// CallStack tracks the live frames of one top level call, plus the set
// of contracts on the stack for reentrancy detection.
type CallStack struct {
	frames deque.Deque
	active map[string]int
}

func NewCallStack() *CallStack {
	return &CallStack{
		active: make(map[string]int),
	}
}

func (s *CallStack) Len() int {
	return s.frames.Len()
}

// Contains reports whether the contract already has a frame on the stack.
func (s *CallStack) Contains(id principal.ContractIdentifier) bool {
	return s.active[id.String()] > 0
}

func (s *CallStack) Push(f *Frame) {
	s.frames.PushBack(f)
	s.active[f.Contract.String()]++
}

func (s *CallStack) Pop() *Frame {
	f := s.frames.PopBack().(*Frame)
	key := f.Contract.String()
	s.active[key]--
	if s.active[key] == 0 {
		delete(s.active, key)
	}
	return f
}

// Top returns the executing frame, nil when the stack is empty.
func (s *CallStack) Top() *Frame {
	if s.frames.Len() == 0 {
		return nil
	}
	return s.frames.Back().(*Frame)
}
