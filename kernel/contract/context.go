package contract

import (
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// KContext is the handle a contract function receives. It carries the
// caller identities, metered state access, sub-call dispatch and the
// budget hooks. Every accessor charges the running budget before it
// touches state; a budget abort surfaces as ErrCostExceeded or
// ErrMemoryExceeded from the accessor itself.
type KContext interface {
	// Sender is the transaction sender visible to the executing code. It
	// propagates unchanged through cross-contract calls; only AsContract
	// rewrites it, for the duration of the closure.
	Sender() principal.Principal
	// Caller is the immediate caller: the origin at the top frame, the
	// calling contract below it.
	Caller() principal.Principal
	// Origin is the principal that signed the enclosing transaction. It
	// never changes across nested calls.
	Origin() principal.Principal
	// Sponsor is the fee-paying principal of a sponsored transaction,
	// nil when the origin pays its own fee.
	Sponsor() principal.Principal
	// ContractID identifies the executing contract.
	ContractID() principal.ContractIdentifier

	// Args returns the argument values of the current invocation.
	Args() []Value

	// Get reads a key from the contract's bucket. Absent keys return
	// ErrNotFound.
	Get(bucket string, key []byte) ([]byte, error)
	// Put writes a key into the contract's bucket.
	Put(bucket string, key, value []byte) error
	// Del removes a key from the contract's bucket.
	Del(bucket string, key []byte) error
	// Select iterates [startKey, endKey) within a bucket.
	Select(bucket string, startKey, endKey []byte) (Iterator, error)

	// CallContract dispatches a function on another contract under a
	// savepoint scope. An error from the callee discards only the
	// callee's writes.
	CallContract(target principal.ContractIdentifier, function string, args []Value) (Value, error)
	// CallPrivate dispatches a private function of the executing
	// contract on the same scope, no savepoint.
	CallPrivate(function string, args []Value) (Value, error)
	// AsContract runs fn with Sender rewritten to the executing
	// contract's own principal, restoring the previous sender after.
	AsContract(fn func() (Value, error)) (Value, error)

	// Let charges the bindings against the memory budget, runs body, and
	// releases the binding memory when body returns.
	Let(bindings []Value, body func() (Value, error)) (Value, error)

	// AddResourceUsed charges the cost budget.
	AddResourceUsed(delta Limits) error
	// ChargeMemory reserves n bytes against the memory ceiling.
	ChargeMemory(n int64) error
	// ReleaseMemory returns n reserved bytes.
	ReleaseMemory(n int64)
	// ResourceUsed reports the cost consumed so far in this call tree.
	ResourceUsed() Limits

	// BlockHeight is the height of the block under construction.
	BlockHeight() int64
	// BlockTime is the header timestamp of the block under construction.
	BlockTime() int64
	// BurnHeight is the height of the underlying burn chain at this block.
	BurnHeight() int64
	// Network identifies the epoch's network for principal validation.
	Network() principal.Network

	// Logger returns the call-scoped logger.
	Logger() Logger
}

// Logger is the logging surface handed to contract code, a narrowed view
// of lib/logs.Logger so kernel/contract does not import it directly.
type Logger interface {
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
}
