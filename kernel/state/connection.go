package state

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/bridge"
	"github.com/quartzlabs/quartzcore/kernel/contract/budget"
	"github.com/quartzlabs/quartzcore/kernel/contract/sandbox"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/kernel/principal"
	"github.com/quartzlabs/quartzcore/lib/metrics"
	"github.com/quartzlabs/quartzcore/lib/timer"
)

// ErrBlockCommitted rejects operations on a consumed block handle.
var ErrBlockCommitted = errors.New("block already committed")

// CallSnapshot is what the abort callback sees: the nominal result and
// the footprint of an otherwise successful call, before anything is
// folded into the block.
type CallSnapshot struct {
	Value      contract.Value
	RWSet      *contract.RWSet
	CostUsed   contract.Limits
	MemoryPeak int64
}

// AbortCallback is a synchronous veto. Returning true discards the
// call's writes and surfaces ErrAbortedByCallback.
type AbortCallback func(*CallSnapshot) bool

// CallResult is the external result of one top level operation.
type CallResult struct {
	Outcome  bridge.Outcome
	Value    contract.Value
	CostUsed contract.Limits
	// MemoryPeak is the high water mark of metered memory during the call.
	MemoryPeak int64
}

// Response renders the result for transport.
func (r *CallResult) Response() *contract.Response {
	resp := &contract.Response{Status: r.Outcome.Status()}
	if r.Value != nil {
		resp.Body = []byte(r.Value.String())
	}
	if !r.Outcome.Commits() {
		resp.Message = r.Outcome.String()
	}
	return resp
}

// StateConnection is one open block: a pending overlay over the parent's
// committed state, mutated by a sequence of transaction scopes and
// sealed by CommitBlock. Not safe for concurrent use.
type StateConnection struct {
	mgr      *Manager
	blockID  ledger.BlockID
	parentID ledger.BlockID
	// height, timestamp and burnHeight are resolved from the store and
	// the header/burn readers when the block opens.
	height     int64
	timestamp  int64
	burnHeight int64

	// per call ceilings, lifted entirely for a test genesis block
	costCeiling contract.Limits
	memCeiling  int64

	pending *sandbox.Cache
	// scopes is the stack of open AsTransaction overlays.
	scopes    []*sandbox.Cache
	committed bool
}

func (s *StateConnection) BlockID() ledger.BlockID { return s.blockID }

func (s *StateConnection) BlockHeight() int64 { return s.height }

// BlockTime is the header timestamp of the block under construction,
// zero when no header reader was supplied.
func (s *StateConnection) BlockTime() int64 { return s.timestamp }

// current returns the innermost open overlay.
func (s *StateConnection) current() *sandbox.Cache {
	if n := len(s.scopes); n > 0 {
		return s.scopes[n-1]
	}
	return s.pending
}

// AsTransaction runs work inside a fresh scope layered over the block's
// current state. The scope folds into the enclosing state when work
// returns nil, and is discarded wholly when it returns an error. Nested
// calls compose: an inner rollback never disturbs outer writes.
func (s *StateConnection) AsTransaction(work func() error) error {
	if s.committed {
		return ErrBlockCommitted
	}
	parent := s.current()
	scope := sandbox.NewCache(&contract.SandboxConfig{XMReader: parent.Reader()})
	s.scopes = append(s.scopes, scope)

	err := work()

	s.scopes = s.scopes[:len(s.scopes)-1]
	if err != nil {
		scope.Discard()
		metrics.TxScopeCounter.WithLabelValues(s.mgr.chainName, "rollback").Inc()
		return err
	}
	if ferr := scope.Flush(parent); ferr != nil {
		return ferr
	}
	metrics.TxScopeCounter.WithLabelValues(s.mgr.chainName, "commit").Inc()
	return nil
}

func (s *StateConnection) newEnvironment(origin, sponsor principal.Principal, b *budget.Budget) *bridge.Environment {
	return bridge.NewEnvironment(&bridge.EnvironmentConfig{
		Budget:       b,
		Origin:       origin,
		Sponsor:      sponsor,
		Network:      s.mgr.network,
		BlockHeight:  s.height,
		BlockTime:    s.timestamp,
		BurnHeight:   s.burnHeight,
		MaxCallDepth: s.mgr.cfg.MaxCallDepth,
		Logger:       s.mgr.log,
	})
}

// InitializeSmartContract installs the registered code under identifier
// inside its own scope. Any failure, a budget abort included, leaves the
// identifier entirely unregistered; a later attempt with the same
// identifier starts clean.
func (s *StateConnection) InitializeSmartContract(origin principal.Principal, id principal.ContractIdentifier, codeKey string, abort AbortCallback) (*CallResult, error) {
	if s.committed {
		return nil, ErrBlockCommitted
	}
	xtimer := timer.NewXTimer()
	b := budget.New(s.costCeiling, s.memCeiling)
	env := s.newEnvironment(origin, nil, b)

	parent := s.current()
	scope := sandbox.NewCache(&contract.SandboxConfig{XMReader: parent.Reader()})

	err := env.Init(scope, id, codeKey)
	xtimer.Mark("exec")
	outcome := bridge.ClassifyReadOnly(nil, err)
	if outcome == bridge.OutcomeOK && abort != nil {
		if abort(&CallSnapshot{
			RWSet:      scope.RWSet(),
			CostUsed:   b.Used(),
			MemoryPeak: b.MemoryPeak(),
		}) {
			outcome = bridge.OutcomeAborted
			err = contract.ErrAbortedByCallback
		}
	}
	outcome, foldErr := s.finishCall(scope, parent, id, "init", outcome, xtimer, b)
	if foldErr != nil {
		return nil, foldErr
	}
	if err != nil {
		return nil, err
	}
	return &CallResult{
		Outcome:    outcome,
		CostUsed:   b.Used(),
		MemoryPeak: b.MemoryPeak(),
	}, nil
}

// RunContractCall dispatches a public function as a top level call. An
// err response from the contract rolls back every write of the call,
// nested sub-calls included, but still returns a result carrying the
// rejection payload; engine errors surface as errors.
func (s *StateConnection) RunContractCall(origin, sponsor principal.Principal, id principal.ContractIdentifier, function string, args []contract.Value, abort AbortCallback) (*CallResult, error) {
	if s.committed {
		return nil, ErrBlockCommitted
	}
	xtimer := timer.NewXTimer()
	b := budget.New(s.costCeiling, s.memCeiling)
	env := s.newEnvironment(origin, sponsor, b)

	parent := s.current()
	scope := sandbox.NewCache(&contract.SandboxConfig{XMReader: parent.Reader()})

	value, err := env.Call(scope, id, function, args)
	xtimer.Mark("exec")
	outcome := bridge.Classify(value, err)
	if err == nil && outcome == bridge.OutcomeCheckError {
		err = errors.Wrapf(contract.ErrBadResponseValue, "%s.%s", id.String(), function)
	}
	if outcome == bridge.OutcomeOK && abort != nil {
		if abort(&CallSnapshot{
			Value:      value,
			RWSet:      scope.RWSet(),
			CostUsed:   b.Used(),
			MemoryPeak: b.MemoryPeak(),
		}) {
			outcome = bridge.OutcomeAborted
			err = contract.ErrAbortedByCallback
		}
	}
	outcome, foldErr := s.finishCall(scope, parent, id, function, outcome, xtimer, b)
	if foldErr != nil {
		return nil, foldErr
	}
	if err != nil {
		return nil, err
	}
	// an err response is not an error: the payload flows back to the caller
	return &CallResult{
		Outcome:    outcome,
		Value:      value,
		CostUsed:   b.Used(),
		MemoryPeak: b.MemoryPeak(),
	}, nil
}

// finishCall folds or discards the call scope per outcome and records
// the call metrics. A failed fold degrades the outcome to an engine
// error; the returned error is the fold failure.
func (s *StateConnection) finishCall(scope, parent *sandbox.Cache, id principal.ContractIdentifier, function string, outcome bridge.Outcome, xtimer *timer.XTimer, b *budget.Budget) (bridge.Outcome, error) {
	var foldErr error
	if outcome.Commits() {
		if foldErr = scope.Flush(parent); foldErr != nil {
			s.mgr.log.Error("fold call scope failed", "contract", id.String(), "err", foldErr)
			outcome = bridge.OutcomeEngineError
		}
	} else {
		scope.Discard()
	}
	xtimer.Mark("fold")

	chain := s.mgr.chainName
	metrics.ContractCallCounter.WithLabelValues(chain, id.String(), function, outcome.String()).Inc()
	metrics.ContractCallHistogram.WithLabelValues(chain, id.String(), function).Observe(xtimer.Elapsed())
	metrics.ContractCostCounter.WithLabelValues(chain, id.String()).Add(float64(b.Used().TotalGas()))
	s.mgr.log.Debug("contract call finished",
		"contract", id.String(), "function", function,
		"outcome", outcome.String(), "gas", b.Used().TotalGas(), "timer", xtimer.Print())
	return outcome, foldErr
}

// EvalReadOnly evaluates a read-only function against the block's
// current state. Nothing persists; a mutation attempt fails at the
// attempting operation.
func (s *StateConnection) EvalReadOnly(origin principal.Principal, id principal.ContractIdentifier, function string, args []contract.Value) (contract.Value, error) {
	if s.committed {
		return nil, ErrBlockCommitted
	}
	b := budget.New(s.costCeiling, s.memCeiling)
	env := s.newEnvironment(origin, nil, b)

	scope := sandbox.NewCache(&contract.SandboxConfig{
		XMReader: s.current().Reader(),
		ReadOnly: true,
	})
	defer scope.Discard()

	return env.EvalReadOnly(scope, id, function, args)
}

// AnalyzeSmartContract derives the interface analysis of a registered
// code namespace. Pure, no state is touched.
func (s *StateConnection) AnalyzeSmartContract(id principal.ContractIdentifier, codeKey string) (*contract.Analysis, error) {
	if err := contract.ValidContractName(id.Name); err != nil {
		return nil, err
	}
	code, ok := contract.Code(codeKey)
	if !ok {
		return nil, errors.Wrapf(contract.ErrContractNotFound, "code %s not registered", codeKey)
	}
	return contract.AnalyzeContract(id, code), nil
}

// SaveAnalysis persists an analysis artifact alongside the contract.
// Not consensus-critical, it writes directly to the block overlay.
func (s *StateConnection) SaveAnalysis(id principal.ContractIdentifier, analysis *contract.Analysis) error {
	if s.committed {
		return ErrBlockCommitted
	}
	buf, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return s.current().Put(bridge.AnalysisBucket, []byte(id.String()), buf)
}

// GetAnalysis loads a persisted analysis artifact.
func (s *StateConnection) GetAnalysis(id principal.ContractIdentifier) (*contract.Analysis, error) {
	raw, err := s.current().Get(bridge.AnalysisBucket, []byte(id.String()))
	if err != nil {
		return nil, err
	}
	analysis := new(contract.Analysis)
	if err := json.Unmarshal(raw, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// CommitBlock seals the pending overlay into the backing store and
// returns the root commitment. The handle is consumed.
func (s *StateConnection) CommitBlock() ([]byte, error) {
	if s.committed {
		return nil, ErrBlockCommitted
	}
	if len(s.scopes) > 0 {
		return nil, errors.New("commit block with open transaction scope")
	}

	wset := s.pending.RWSet().WSet
	if err := s.mgr.store.PutBlockData(s.blockID, wset); err != nil {
		return nil, err
	}
	root, err := s.mgr.store.SealBlock(s.blockID)
	if err != nil {
		return nil, err
	}
	s.pending.Discard()
	s.committed = true
	metrics.BlockCommitCounter.WithLabelValues(s.mgr.chainName).Inc()
	s.mgr.log.Info("block committed",
		"chain", s.mgr.chainName, "height", s.height, "writes", len(wset))
	return root, nil
}
