package contract

import (
	"encoding/json"
	"regexp"
	"sync"

	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// FunctionKind tags how a contract function may be reached.
type FunctionKind int

const (
	// KindPublic functions are callable from outside the contract and may
	// mutate state.
	KindPublic FunctionKind = iota
	// KindPrivate functions are only reachable from inside the defining
	// contract.
	KindPrivate
	// KindReadOnly functions may be evaluated externally but must not
	// mutate state.
	KindReadOnly
)

func (k FunctionKind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindPrivate:
		return "private"
	case KindReadOnly:
		return "read-only"
	default:
		return "unknown"
	}
}

// Handler is the body of one contract function. Arguments arrive
// pre-counted against Arity; the handler returns its result value or an
// engine error.
type Handler func(ctx KContext, args []Value) (Value, error)

// Function is one named entry point of a contract namespace.
type Function struct {
	Name    string
	Kind    FunctionKind
	Arity   int
	Handler Handler
}

// Contract is a code namespace: a set of named functions plus an
// optional Init hook run exactly once when the contract is installed
// into a block.
type Contract struct {
	Functions map[string]*Function
	// Init runs inside the installing transaction scope. A non-nil error
	// or budget abort unwinds the installation entirely.
	Init func(ctx KContext) error
}

// GetFunction looks a function up by name.
func (c *Contract) GetFunction(name string) (*Function, bool) {
	f, ok := c.Functions[name]
	return f, ok
}

// Desc is the persisted record of an installed contract, stored under
// the contract bucket at initialization and consulted for duplicate
// detection and dispatch.
type Desc struct {
	Issuer string `json:"issuer"`
	Name   string `json:"name"`
	// CodeKey names the registered code backing this contract.
	CodeKey string `json:"code_key"`
	// InitHeight is the block height the contract was installed at.
	InitHeight int64 `json:"init_height"`
}

// Marshal encodes the descriptor for storage.
func (d *Desc) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// ParseDesc decodes a stored descriptor.
func ParseDesc(buf []byte) (*Desc, error) {
	var d Desc
	if err := json.Unmarshal(buf, &d); err != nil {
		return nil, errors.Wrap(err, "parse contract desc")
	}
	return &d, nil
}

// Analysis is the derived summary of a contract persisted alongside its
// descriptor so callers can inspect the interface without the code.
type Analysis struct {
	Contract  string             `json:"contract"`
	Functions []FunctionAnalysis `json:"functions"`
}

// FunctionAnalysis describes one entry point.
type FunctionAnalysis struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Arity int    `json:"arity"`
}

// AnalyzeContract derives the Analysis of a code namespace.
func AnalyzeContract(id principal.ContractIdentifier, c *Contract) *Analysis {
	a := &Analysis{Contract: id.String()}
	for name, f := range c.Functions {
		a.Functions = append(a.Functions, FunctionAnalysis{
			Name:  name,
			Kind:  f.Kind.String(),
			Arity: f.Arity,
		})
	}
	return a
}

// codeRegistry maps code keys to namespaces. Registration happens from
// package init funcs, the same way kv drivers self register.
var (
	codeMutex    sync.Mutex
	codeRegistry = make(map[string]*Contract)
)

// RegisterCode publishes a contract namespace under key so descriptors
// can bind to it. Registering a key twice panics, it means two packages
// collide at process start.
func RegisterCode(key string, c *Contract) {
	codeMutex.Lock()
	defer codeMutex.Unlock()
	if _, ok := codeRegistry[key]; ok {
		panic("contract code registered twice: " + key)
	}
	codeRegistry[key] = c
}

// Code fetches a registered namespace by key.
func Code(key string) (*Contract, bool) {
	codeMutex.Lock()
	defer codeMutex.Unlock()
	c, ok := codeRegistry[key]
	return c, ok
}

var contractNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_\-]{1,111}$`)

// ValidContractName checks the naming rule for contract identifiers.
func ValidContractName(name string) error {
	if !contractNameRegex.MatchString(name) {
		return errors.Errorf("invalid contract name %q", name)
	}
	return nil
}
