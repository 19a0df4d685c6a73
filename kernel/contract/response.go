package contract

// Status codes of a call response, loosely mirroring http semantics.
const (
	// StatusOK is used when a call commits.
	StatusOK = 200
	// StatusErrorThreshold marks the boundary between commit and rollback.
	StatusErrorThreshold = 400
	// StatusContractError is used when the callee returned an err response.
	StatusContractError = 400
	// StatusCheckError is used when dispatch or type checking rejected the
	// call before or during execution.
	StatusCheckError = 422
	// StatusBudgetError is used when the cost or memory ceiling aborted
	// the call.
	StatusBudgetError = 429
	// StatusAborted is used when the abort callback discarded the call.
	StatusAborted = 409
	// StatusInternalError is used for engine faults.
	StatusInternalError = 500
)

// Response is the external result of one dispatched call.
type Response struct {
	// Status is one of the codes above.
	Status int `json:"status"`
	// Message carries the error detail for non-OK responses.
	Message string `json:"message"`
	// Body is the rendered return value.
	Body []byte `json:"body"`
}
