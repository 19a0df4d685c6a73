// Package bridge connects dispatched contract calls to registered code
// namespaces. It owns the call stack, the budget charging points and the
// savepoint scopes of nested calls.
package bridge

import (
	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/budget"
	"github.com/quartzlabs/quartzcore/kernel/contract/sandbox"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

const (
	// ContractBucket stores contract descriptors keyed by identifier.
	ContractBucket = "$contract"
	// AnalysisBucket stores derived contract analyses.
	AnalysisBucket = "$analysis"
)

// Dispatch and state access runtime charges.
const (
	gasCallBase   = 1000
	gasGetBase    = 100
	gasPutBase    = 200
	gasSelectBase = 500
)

// EnvironmentConfig carries everything one top level call needs.
type EnvironmentConfig struct {
	Budget *budget.Budget
	// Origin is the principal that signed the enclosing transaction.
	Origin principal.Principal
	// Sponsor is the fee payer of a sponsored transaction, may be nil.
	Sponsor      principal.Principal
	Network      principal.Network
	BlockHeight  int64
	BlockTime    int64
	BurnHeight   int64
	MaxCallDepth int
	Logger       contract.Logger
}

// Environment executes contract functions for one top level call. It is
// not safe for concurrent use; each call gets its own environment.
type Environment struct {
	budget       *budget.Budget
	origin       principal.Principal
	sponsor      principal.Principal
	network      principal.Network
	blockHeight  int64
	blockTime    int64
	burnHeight   int64
	maxCallDepth int
	logger       contract.Logger

	stack *CallStack
}

func NewEnvironment(cfg *EnvironmentConfig) *Environment {
	return &Environment{
		budget:       cfg.Budget,
		origin:       cfg.Origin,
		sponsor:      cfg.Sponsor,
		network:      cfg.Network,
		blockHeight:  cfg.BlockHeight,
		blockTime:    cfg.BlockTime,
		burnHeight:   cfg.BurnHeight,
		maxCallDepth: cfg.MaxCallDepth,
		logger:       cfg.Logger,
	}
}

// resolveContract loads the descriptor of id from scope and binds it to
// its registered code. Dispatch reads are system reads, they are not
// charged against the caller's budget.
func (e *Environment) resolveContract(scope *sandbox.Cache, id principal.ContractIdentifier) (*contract.Contract, *contract.Desc, error) {
	raw, err := scope.Get(ContractBucket, []byte(id.String()))
	if err == contract.ErrNotFound {
		return nil, nil, errors.Wrap(contract.ErrContractNotFound, id.String())
	}
	if err != nil {
		return nil, nil, err
	}
	desc, err := contract.ParseDesc(raw)
	if err != nil {
		return nil, nil, err
	}
	code, ok := contract.Code(desc.CodeKey)
	if !ok {
		return nil, nil, errors.Wrapf(contract.ErrContractNotFound, "code %s not registered", desc.CodeKey)
	}
	return code, desc, nil
}

// Init installs the contract identified by id, backed by the registered
// code key, into scope and runs its Init hook. The caller discards the
// scope when Init fails, which unregisters the contract entirely.
func (e *Environment) Init(scope *sandbox.Cache, id principal.ContractIdentifier, codeKey string) error {
	if err := contract.ValidContractName(id.Name); err != nil {
		return err
	}
	descKey := []byte(id.String())
	_, err := scope.Get(ContractBucket, descKey)
	if err == nil {
		return errors.Wrap(contract.ErrContractExists, id.String())
	}
	if err != contract.ErrNotFound {
		return err
	}

	code, ok := contract.Code(codeKey)
	if !ok {
		return errors.Wrapf(contract.ErrContractNotFound, "code %s not registered", codeKey)
	}

	desc := &contract.Desc{
		Issuer:     id.Issuer.String(),
		Name:       id.Name,
		CodeKey:    codeKey,
		InitHeight: e.blockHeight,
	}
	buf, err := desc.Marshal()
	if err != nil {
		return err
	}
	if err := scope.Put(ContractBucket, descKey, buf); err != nil {
		return err
	}

	if code.Init == nil {
		return nil
	}
	initFn := &contract.Function{Name: "init", Kind: contract.KindPublic}
	return e.withFrame(scope, e.origin, e.origin, id, code, initFn, nil, false, func(kctx contract.KContext) error {
		return code.Init(kctx)
	})
}

// Call dispatches a public function on id, the entry point for external
// transactions. Private and read-only functions are not reachable here.
func (e *Environment) Call(scope *sandbox.Cache, id principal.ContractIdentifier, function string, args []contract.Value) (contract.Value, error) {
	code, _, err := e.resolveContract(scope, id)
	if err != nil {
		return nil, err
	}
	f, ok := code.GetFunction(function)
	if !ok {
		return nil, errors.Wrapf(contract.ErrFunctionNotFound, "%s.%s", id.String(), function)
	}
	if f.Kind != contract.KindPublic {
		return nil, errors.Wrapf(contract.ErrNonPublicFunction, "%s.%s is %s", id.String(), function, f.Kind)
	}
	return e.invoke(scope, e.origin, e.origin, id, code, f, args, false)
}

// EvalReadOnly evaluates a read-only function. The scope should be
// opened read-only so stray writes fail instead of leaking.
func (e *Environment) EvalReadOnly(scope *sandbox.Cache, id principal.ContractIdentifier, function string, args []contract.Value) (contract.Value, error) {
	code, _, err := e.resolveContract(scope, id)
	if err != nil {
		return nil, err
	}
	f, ok := code.GetFunction(function)
	if !ok {
		return nil, errors.Wrapf(contract.ErrFunctionNotFound, "%s.%s", id.String(), function)
	}
	if f.Kind != contract.KindReadOnly {
		return nil, errors.Wrapf(contract.ErrNonReadOnlyFunction, "%s.%s is %s", id.String(), function, f.Kind)
	}
	return e.invoke(scope, e.origin, e.origin, id, code, f, args, false)
}

// invoke runs one function frame: arity check, dispatch charge, argument
// memory reservation, handler, release. selfCall skips the reentrancy
// check for a contract invoking its own functions.
func (e *Environment) invoke(scope *sandbox.Cache, sender, caller principal.Principal, id principal.ContractIdentifier, code *contract.Contract, f *contract.Function, args []contract.Value, selfCall bool) (contract.Value, error) {
	if len(args) != f.Arity {
		return nil, &contract.ArityError{Function: f.Name, Expected: f.Arity, Got: len(args)}
	}
	var result contract.Value
	err := e.withFrame(scope, sender, caller, id, code, f, args, selfCall, func(kctx contract.KContext) error {
		v, err := f.Handler(kctx, args)
		result = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Environment) withFrame(scope *sandbox.Cache, sender, caller principal.Principal, id principal.ContractIdentifier, code *contract.Contract, f *contract.Function, args []contract.Value, selfCall bool, body func(contract.KContext) error) error {
	if e.stack == nil {
		e.stack = NewCallStack()
	}
	if e.stack.Len() >= e.maxCallDepth {
		return contract.ErrCallDepthExceeded
	}
	if !selfCall && e.stack.Contains(id) {
		return errors.Wrap(contract.ErrReentrantCall, id.String())
	}

	if err := e.budget.Charge(contract.Limits{Runtime: gasCallBase}); err != nil {
		return err
	}
	argMem := contract.SizeOf(args...)
	if err := e.budget.ChargeMemory(argMem); err != nil {
		return err
	}

	frame := &Frame{
		Contract: id,
		Function: f,
		Sender:   sender,
		Caller:   caller,
		Scope:    scope,
		code:     code,
		argMem:   argMem,
	}
	e.stack.Push(frame)
	defer func() {
		e.stack.Pop()
		e.budget.ReleaseMemory(argMem)
	}()

	kctx := &kcontext{env: e, frame: frame, args: args}
	return body(kctx)
}
