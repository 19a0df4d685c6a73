package contract

import (
	"github.com/quartzlabs/quartzcore/kernel/ledger"
)

// Iterator walks a key range in ascending key order. Keys and values are
// only valid until the next call to Next.
type Iterator interface {
	Key() []byte
	Value() []byte
	Next() bool
	Error() error
	// Iterator must be closed after use.
	Close()
}

// XMState is the mutable state surface a transaction scope exposes.
type XMState interface {
	Get(bucket string, key []byte) ([]byte, error)
	Select(bucket string, startKey []byte, endKey []byte) (Iterator, error)
	Put(bucket string, key, value []byte) error
	Del(bucket string, key []byte) error
}

// RWSet is the read and write footprint extracted from a finished scope.
// Reads carry the versions observed, writes carry the pending values.
type RWSet struct {
	RSet []*ledger.VersionedData
	WSet []*ledger.PureData
}

// StateSandbox is one transaction scope: an overlay over a parent reader
// that buffers writes until the caller folds or discards them.
type StateSandbox interface {
	XMState
	// RWSet returns the footprint accumulated so far.
	RWSet() *RWSet
	// Flush folds this scope's write set into dst. After Flush the
	// sandbox is closed.
	Flush(dst XMState) error
	// Discard closes the sandbox and drops its writes.
	Discard()
}

// SandboxConfig configures a new transaction scope.
type SandboxConfig struct {
	XMReader ledger.XMReader
	// ReadOnly scopes reject Put and Del with ErrWriteNotAllowed.
	ReadOnly bool
}
