package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors for the execution engine. Callers classify outcomes by
// errors.Is against these values.
var (
	// ErrContractNotFound means dispatch named a contract identifier with
	// no registered code behind it.
	ErrContractNotFound = errors.New("contract not found")
	// ErrContractExists rejects initializing the same identifier twice.
	ErrContractExists = errors.New("contract already exists")
	// ErrFunctionNotFound means the named function is not defined by the
	// target contract.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrNonPublicFunction rejects external calls to private or read-only
	// functions.
	ErrNonPublicFunction = errors.New("function is not public")
	// ErrNonReadOnlyFunction rejects read-only evaluation of public or
	// private functions.
	ErrNonReadOnlyFunction = errors.New("function is not read-only")
	// ErrBadResponseValue rejects a public function returning anything
	// other than a response value.
	ErrBadResponseValue = errors.New("public function must return a response")
	// ErrCostExceeded aborts execution once the cost budget ceiling is hit.
	ErrCostExceeded = errors.New("cost budget exceeded")
	// ErrMemoryExceeded aborts execution once tracked memory passes the
	// configured ceiling.
	ErrMemoryExceeded = errors.New("memory budget exceeded")
	// ErrAbortedByCallback marks a call whose effects were discarded by the
	// post-execution abort callback.
	ErrAbortedByCallback = errors.New("aborted by callback")
	// ErrWriteNotAllowed rejects state mutation inside read-only evaluation.
	ErrWriteNotAllowed = errors.New("write not allowed in read-only context")
	// ErrCallDepthExceeded aborts when nested contract calls pass the
	// configured stack depth.
	ErrCallDepthExceeded = errors.New("call depth exceeded")
	// ErrReentrantCall rejects a contract appearing twice in one call stack.
	ErrReentrantCall = errors.New("reentrant contract call")
	// ErrSandboxClosed rejects use of a transaction scope after commit or
	// rollback.
	ErrSandboxClosed = errors.New("transaction scope already finished")
	// ErrNotFound is returned by state reads for absent keys.
	ErrNotFound = errors.New("key not found")
)

// TypeError reports a runtime value of the wrong kind reaching a builtin
// or function argument slot.
type TypeError struct {
	Expected string
	Got      ValueType
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: expected %s, got %s", e.Expected, e.Got)
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Function string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("arity error: %s expects %d arguments, got %d", e.Function, e.Expected, e.Got)
}
