package bridge

import (
	"errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
)

// Outcome classifies how a dispatched call finished. The classification
// decides whether the call's write set survives.
type Outcome int

const (
	// OutcomeOK commits the call's writes.
	OutcomeOK Outcome = iota
	// OutcomeContractError means the callee returned an err response. The
	// writes roll back but the response value is preserved.
	OutcomeContractError
	// OutcomeCheckError means dispatch or type checking rejected the call.
	OutcomeCheckError
	// OutcomeBudgetError means a cost or memory ceiling aborted the call.
	OutcomeBudgetError
	// OutcomeAborted means the abort callback discarded a successful call.
	OutcomeAborted
	// OutcomeEngineError is an internal fault.
	OutcomeEngineError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeContractError:
		return "contract_error"
	case OutcomeCheckError:
		return "check_error"
	case OutcomeBudgetError:
		return "budget_error"
	case OutcomeAborted:
		return "aborted"
	default:
		return "engine_error"
	}
}

// Commits reports whether the outcome keeps the call's writes.
func (o Outcome) Commits() bool {
	return o == OutcomeOK
}

// Status maps the outcome to a response status code.
func (o Outcome) Status() int {
	switch o {
	case OutcomeOK:
		return contract.StatusOK
	case OutcomeContractError:
		return contract.StatusContractError
	case OutcomeCheckError:
		return contract.StatusCheckError
	case OutcomeBudgetError:
		return contract.StatusBudgetError
	case OutcomeAborted:
		return contract.StatusAborted
	default:
		return contract.StatusInternalError
	}
}

// Classify sorts the result of a public call into an outcome. A public
// function must return a response value; ok commits, err rolls back. All
// engine errors roll back, split by kind so callers can distinguish a
// rejected call from an exhausted budget.
func Classify(v contract.Value, err error) Outcome {
	if err != nil {
		return classifyError(err)
	}
	resp, ok := v.(contract.ResponseValue)
	if !ok {
		return OutcomeCheckError
	}
	if resp.OK {
		return OutcomeOK
	}
	return OutcomeContractError
}

// ClassifyReadOnly sorts the result of a read-only evaluation. Any value
// is acceptable, nothing commits either way.
func ClassifyReadOnly(v contract.Value, err error) Outcome {
	if err != nil {
		return classifyError(err)
	}
	return OutcomeOK
}

func classifyError(err error) Outcome {
	switch {
	case errors.Is(err, contract.ErrCostExceeded),
		errors.Is(err, contract.ErrMemoryExceeded):
		return OutcomeBudgetError
	case errors.Is(err, contract.ErrAbortedByCallback):
		return OutcomeAborted
	case errors.Is(err, contract.ErrContractNotFound),
		errors.Is(err, contract.ErrContractExists),
		errors.Is(err, contract.ErrFunctionNotFound),
		errors.Is(err, contract.ErrNonPublicFunction),
		errors.Is(err, contract.ErrNonReadOnlyFunction),
		errors.Is(err, contract.ErrBadResponseValue),
		errors.Is(err, contract.ErrCallDepthExceeded),
		errors.Is(err, contract.ErrReentrantCall),
		errors.Is(err, contract.ErrWriteNotAllowed):
		return OutcomeCheckError
	}
	var typeErr *contract.TypeError
	if errors.As(err, &typeErr) {
		return OutcomeCheckError
	}
	var arityErr *contract.ArityError
	if errors.As(err, &arityErr) {
		return OutcomeCheckError
	}
	return OutcomeEngineError
}
