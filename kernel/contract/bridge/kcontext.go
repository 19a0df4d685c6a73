package bridge

import (
	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/sandbox"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

var _ contract.KContext = (*kcontext)(nil)

// kcontext is the per frame view handed to contract handlers. All state
// access is charged against the environment budget before it happens.
type kcontext struct {
	env   *Environment
	frame *Frame
	args  []contract.Value
}

func (k *kcontext) Sender() principal.Principal {
	return k.frame.Sender
}

func (k *kcontext) Caller() principal.Principal {
	return k.frame.Caller
}

func (k *kcontext) Origin() principal.Principal {
	return k.env.origin
}

func (k *kcontext) Sponsor() principal.Principal {
	return k.env.sponsor
}

func (k *kcontext) ContractID() principal.ContractIdentifier {
	return k.frame.Contract
}

func (k *kcontext) Args() []contract.Value {
	return k.args
}

// bucketOf namespaces a logical bucket under the executing contract so
// contracts never read each other's data directly.
func (k *kcontext) bucketOf(bucket string) string {
	return k.frame.Contract.String() + "#" + bucket
}

func (k *kcontext) Get(bucket string, key []byte) ([]byte, error) {
	if err := k.env.budget.Charge(contract.Limits{Runtime: gasGetBase, ReadCnt: 1}); err != nil {
		return nil, err
	}
	value, err := k.frame.Scope.Get(k.bucketOf(bucket), key)
	if err != nil {
		return nil, err
	}
	if err := k.env.budget.Charge(contract.Limits{ReadLen: int64(len(value))}); err != nil {
		return nil, err
	}
	return value, nil
}

func (k *kcontext) Put(bucket string, key, value []byte) error {
	delta := contract.Limits{
		Runtime:  gasPutBase,
		WriteCnt: 1,
		WriteLen: int64(len(key) + len(value)),
	}
	if err := k.env.budget.Charge(delta); err != nil {
		return err
	}
	return k.frame.Scope.Put(k.bucketOf(bucket), key, value)
}

func (k *kcontext) Del(bucket string, key []byte) error {
	if err := k.env.budget.Charge(contract.Limits{Runtime: gasPutBase, WriteCnt: 1}); err != nil {
		return err
	}
	return k.frame.Scope.Del(k.bucketOf(bucket), key)
}

func (k *kcontext) Select(bucket string, startKey, endKey []byte) (contract.Iterator, error) {
	if err := k.env.budget.Charge(contract.Limits{Runtime: gasSelectBase, ReadCnt: 1}); err != nil {
		return nil, err
	}
	iter, err := k.frame.Scope.Select(k.bucketOf(bucket), startKey, endKey)
	if err != nil {
		return nil, err
	}
	return &meteredIterator{Iterator: iter, budget: k.env.budget}, nil
}

// meteredIterator charges each yielded item against the read budget.
type meteredIterator struct {
	contract.Iterator
	budget interface {
		Charge(contract.Limits) error
	}
	err error
}

func (m *meteredIterator) Next() bool {
	if m.err != nil {
		return false
	}
	if !m.Iterator.Next() {
		return false
	}
	delta := contract.Limits{ReadLen: int64(len(m.Key()) + len(m.Value()))}
	if err := m.budget.Charge(delta); err != nil {
		m.err = err
		return false
	}
	return true
}

func (m *meteredIterator) Error() error {
	if m.err != nil {
		return m.err
	}
	return m.Iterator.Error()
}

// CallContract dispatches a function of another contract under a
// savepoint scope layered over the caller's scope. An engine error or an
// err response from the callee discards only the callee's writes.
func (k *kcontext) CallContract(target principal.ContractIdentifier, function string, args []contract.Value) (contract.Value, error) {
	childScope := sandbox.NewCache(&contract.SandboxConfig{XMReader: k.frame.Scope.Reader()})

	code, _, err := k.env.resolveContract(childScope, target)
	if err != nil {
		childScope.Discard()
		return nil, err
	}
	f, ok := code.GetFunction(function)
	if !ok {
		childScope.Discard()
		return nil, errors.Wrapf(contract.ErrFunctionNotFound, "%s.%s", target.String(), function)
	}
	if f.Kind == contract.KindPrivate {
		childScope.Discard()
		return nil, errors.Wrapf(contract.ErrNonPublicFunction, "%s.%s is private", target.String(), function)
	}

	// the sender carries through; the callee sees us as its caller
	result, err := k.env.invoke(childScope, k.frame.Sender, k.frame.Contract, target, code, f, args, false)
	if err != nil {
		childScope.Discard()
		return nil, err
	}
	if resp, ok := result.(contract.ResponseValue); ok && !resp.OK {
		// err response unwinds the callee's writes but still propagates
		childScope.Discard()
		return result, nil
	}
	if err := childScope.Flush(k.frame.Scope); err != nil {
		return nil, err
	}
	return result, nil
}

// CallPrivate dispatches a function of the executing contract on the
// same scope, no savepoint.
func (k *kcontext) CallPrivate(function string, args []contract.Value) (contract.Value, error) {
	f, ok := k.frame.code.GetFunction(function)
	if !ok {
		return nil, errors.Wrapf(contract.ErrFunctionNotFound, "%s.%s", k.frame.Contract.String(), function)
	}
	return k.env.invoke(k.frame.Scope, k.frame.Sender, k.frame.Caller, k.frame.Contract, k.frame.code, f, args, true)
}

// AsContract runs fn with the executing contract as the visible sender.
func (k *kcontext) AsContract(fn func() (contract.Value, error)) (contract.Value, error) {
	saved := k.frame.Sender
	k.frame.Sender = k.frame.Contract
	defer func() {
		k.frame.Sender = saved
	}()
	return fn()
}

// Let reserves the bindings' memory for the duration of body.
func (k *kcontext) Let(bindings []contract.Value, body func() (contract.Value, error)) (contract.Value, error) {
	mem := contract.SizeOf(bindings...)
	if err := k.env.budget.ChargeMemory(mem); err != nil {
		return nil, err
	}
	defer k.env.budget.ReleaseMemory(mem)
	return body()
}

func (k *kcontext) AddResourceUsed(delta contract.Limits) error {
	return k.env.budget.Charge(delta)
}

func (k *kcontext) ChargeMemory(n int64) error {
	return k.env.budget.ChargeMemory(n)
}

func (k *kcontext) ReleaseMemory(n int64) {
	k.env.budget.ReleaseMemory(n)
}

func (k *kcontext) ResourceUsed() contract.Limits {
	return k.env.budget.Used()
}

func (k *kcontext) BlockHeight() int64 {
	return k.env.blockHeight
}

func (k *kcontext) BlockTime() int64 {
	return k.env.blockTime
}

func (k *kcontext) BurnHeight() int64 {
	return k.env.burnHeight
}

func (k *kcontext) Network() principal.Network {
	return k.env.network
}

func (k *kcontext) Logger() contract.Logger {
	return k.env.logger
}
