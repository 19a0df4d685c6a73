package state_test

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/contract/bridge"
	"github.com/quartzlabs/quartzcore/kernel/contract/mock"
	"github.com/quartzlabs/quartzcore/kernel/ledger"
	"github.com/quartzlabs/quartzcore/kernel/principal"
	"github.com/quartzlabs/quartzcore/kernel/state"
)

var (
	tokensID = principal.NewContractIdentifier(mock.AccountA, "tokens")
	namesID  = principal.NewContractIdentifier(mock.AccountA, "names")
)

const (
	bigInitCodeKey = "statetest/big-init"
	wideCodeKey    = "statetest/wide"
	clockCodeKey   = "statetest/clock"
	hookedCodeKey  = "statetest/hooked"
)

// hookFn runs inside the hooked contract after its write, letting a test
// disturb the engine mid-call.
var hookFn func()

func init() {
	// a contract whose initializer alone blows a small memory ceiling
	contract.RegisterCode(bigInitCodeKey, &contract.Contract{
		Init: func(ctx contract.KContext) error {
			buf := contract.Buffer(make([]byte, 8192))
			_, err := ctx.Let([]contract.Value{buf}, func() (contract.Value, error) {
				if err := ctx.Put("data", []byte("var"), buf); err != nil {
					return nil, err
				}
				return contract.Bool(true), nil
			})
			return err
		},
		Functions: map[string]*contract.Function{},
	})

	// a contract that surfaces the block header builtins
	contract.RegisterCode(clockCodeKey, &contract.Contract{
		Functions: map[string]*contract.Function{
			"get-block-time": {
				Name: "get-block-time", Kind: contract.KindReadOnly, Arity: 0,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					return contract.Int(ctx.BlockTime()), nil
				},
			},
			"get-block-height": {
				Name: "get-block-height", Kind: contract.KindReadOnly, Arity: 0,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					return contract.Int(ctx.BlockHeight()), nil
				},
			},
		},
	})

	contract.RegisterCode(hookedCodeKey, &contract.Contract{
		Functions: map[string]*contract.Function{
			"poke": {
				Name: "poke", Kind: contract.KindPublic, Arity: 0,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					if err := ctx.Put("data", []byte("k"), []byte("v")); err != nil {
						return nil, err
					}
					if hookFn != nil {
						hookFn()
					}
					return contract.Ok(contract.Bool(true)), nil
				},
			},
		},
	})

	// a contract that binds one buffer per nested call frame
	contract.RegisterCode(wideCodeKey, &contract.Contract{
		Functions: map[string]*contract.Function{
			"chain": {
				Name: "chain", Kind: contract.KindPublic, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					depth, err := contract.ArgUInt(args, 0)
					if err != nil {
						return nil, err
					}
					return ctx.Let([]contract.Value{contract.Buffer(make([]byte, 1024))}, func() (contract.Value, error) {
						if depth == 0 {
							return contract.Ok(contract.Bool(true)), nil
						}
						return ctx.CallPrivate("chain", []contract.Value{depth - 1})
					})
				},
			},
		},
	})
}

func newChain(t *testing.T, cfg *contract.ContractConfig) *mock.Chain {
	t.Helper()
	chain, err := mock.NewChain(t.TempDir(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(chain.Close)
	return chain
}

// setupTokens commits a genesis block holding the token contract.
func setupTokens(t *testing.T, chain *mock.Chain) {
	t.Helper()
	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.InitializeSmartContract(mock.AccountA, tokensID, mock.TokensCodeKey, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}
}

func balanceOf(t *testing.T, conn *state.StateConnection, who principal.Principal) uint64 {
	t.Helper()
	v, err := conn.EvalReadOnly(mock.AccountA, tokensID, "get-balance",
		[]contract.Value{contract.NewPrincipalValue(who)})
	if err != nil {
		t.Fatal(err)
	}
	return uint64(v.(contract.UInt))
}

func transfer(t *testing.T, conn *state.StateConnection, from principal.Principal, to principal.Principal, amount uint64) *state.CallResult {
	t.Helper()
	res, err := conn.RunContractCall(from, nil, tokensID, "token-transfer",
		[]contract.Value{contract.NewPrincipalValue(to), contract.UInt(amount)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestTokenScenario(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}

	if got := balanceOf(t, conn, mock.AccountA); got != 10000 {
		t.Fatalf("expect A=10000, got %d", got)
	}
	if got := balanceOf(t, conn, mock.AccountB); got != 200 {
		t.Fatalf("expect B=200, got %d", got)
	}

	// 9000 moves from A to B
	res := transfer(t, conn, mock.AccountA, mock.AccountB, 9000)
	if res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect committed transfer, got %v", res.Outcome)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 1000 {
		t.Fatalf("expect A=1000, got %d", got)
	}
	if got := balanceOf(t, conn, mock.AccountB); got != 9200 {
		t.Fatalf("expect B=9200, got %d", got)
	}

	// insufficient balance is an err response, not an engine error
	res = transfer(t, conn, mock.AccountA, mock.AccountB, 1001)
	if res.Outcome != bridge.OutcomeContractError {
		t.Fatalf("expect rolled back transfer, got %v", res.Outcome)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 1000 {
		t.Fatalf("expect A unchanged at 1000, got %d", got)
	}

	// self transfer conserves the balance
	res = transfer(t, conn, mock.AccountA, mock.AccountA, 500)
	if res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect committed self transfer, got %v", res.Outcome)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 1000 {
		t.Fatalf("expect A conserved at 1000, got %d", got)
	}

	// the faucet pays one unit per call out of the contract account
	for i := 0; i < 3; i++ {
		res, err := conn.RunContractCall(mock.AccountA, nil, tokensID, "faucet", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if res.Outcome != bridge.OutcomeOK {
			t.Fatalf("expect faucet commit, got %v", res.Outcome)
		}
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 1003 {
		t.Fatalf("expect A=1003 after three faucet calls, got %d", got)
	}

	// mint-after(25) fails below height 25
	res, err2 := conn.RunContractCall(mock.AccountA, nil, tokensID, "mint-after",
		[]contract.Value{contract.UInt(25)}, nil)
	if err2 != nil {
		t.Fatal(err2)
	}
	if res.Outcome != bridge.OutcomeContractError {
		t.Fatalf("expect mint-after rejection before height 25, got %v", res.Outcome)
	}
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}

	// 25 empty blocks elapse
	if err := chain.AdvanceEmptyBlocks(25); err != nil {
		t.Fatal(err)
	}

	conn, err = chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	res, err = conn.RunContractCall(mock.AccountA, nil, tokensID, "mint-after",
		[]contract.Value{contract.UInt(25)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect mint-after commit at height %d, got %v", conn.BlockHeight(), res.Outcome)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 1004 {
		t.Fatalf("expect A=1004 after mint, got %d", got)
	}
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}
}

func setupNames(t *testing.T, chain *mock.Chain) {
	t.Helper()
	mock.SetNamesDeps(mock.NamesDeps{Tokens: tokensID})
	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.InitializeSmartContract(mock.AccountA, tokensID, mock.TokensCodeKey, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.InitializeSmartContract(mock.AccountA, namesID, mock.NamesCodeKey, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}
}

func nameHash(name string) contract.Buffer {
	sum := sha256.Sum256([]byte(name))
	return contract.Buffer(sum[:])
}

func TestPreorderDuplicateRejected(t *testing.T) {
	chain := newChain(t, nil)
	setupNames(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	hash := nameHash("alice")

	res, err := conn.RunContractCall(mock.AccountA, nil, namesID, "preorder",
		[]contract.Value{hash, contract.UInt(1000)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect preorder commit, got %v", res.Outcome)
	}
	// the burn debited the preorderer
	if got := balanceOf(t, conn, mock.AccountA); got != 9000 {
		t.Fatalf("expect A=9000 after burn, got %d", got)
	}

	// identical preorder is rejected and leaves everything untouched
	res, err = conn.RunContractCall(mock.AccountA, nil, namesID, "preorder",
		[]contract.Value{hash, contract.UInt(1000)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != bridge.OutcomeContractError {
		t.Fatalf("expect duplicate rejection, got %v", res.Outcome)
	}
	resp := res.Value.(contract.ResponseValue)
	if resp.Inner.(contract.Int) != mock.ErrCodePreordered {
		t.Fatalf("expect err code %d, got %v", mock.ErrCodePreordered, resp.Inner)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 9000 {
		t.Fatalf("expect A unchanged at 9000, got %d", got)
	}
	v, err := conn.EvalReadOnly(mock.AccountA, namesID, "preordered-by", []contract.Value{hash})
	if err != nil {
		t.Fatal(err)
	}
	opt := v.(contract.OptionalValue)
	if opt.IsNone() || string(opt.Inner.(contract.String)) != mock.AccountA.String() {
		t.Fatalf("expect original preorder entry intact, got %v", v)
	}
}

func TestRegisterRollbackAtomicity(t *testing.T) {
	chain := newChain(t, nil)
	setupNames(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	hash1 := nameHash("alice-1")
	hash2 := nameHash("alice-2")

	for _, h := range []contract.Buffer{hash1, hash2} {
		res, err := conn.RunContractCall(mock.AccountA, nil, namesID, "preorder",
			[]contract.Value{h, contract.UInt(100)}, nil)
		if err != nil || res.Outcome != bridge.OutcomeOK {
			t.Fatalf("preorder failed: %v %v", res, err)
		}
	}

	res, err := conn.RunContractCall(mock.AccountA, nil, namesID, "register",
		[]contract.Value{hash1, contract.String("alice")}, nil)
	if err != nil || res.Outcome != bridge.OutcomeOK {
		t.Fatalf("register failed: %v %v", res, err)
	}

	// second registration of the same name writes the owner row and
	// consumes the preorder before failing; both must be undone
	res, err = conn.RunContractCall(mock.AccountA, nil, namesID, "register",
		[]contract.Value{hash2, contract.String("alice")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != bridge.OutcomeContractError {
		t.Fatalf("expect name collision rollback, got %v", res.Outcome)
	}
	resp := res.Value.(contract.ResponseValue)
	if resp.Inner.(contract.Int) != mock.ErrCodeNameTaken {
		t.Fatalf("expect err code %d, got %v", mock.ErrCodeNameTaken, resp.Inner)
	}

	// owner row byte-identical to the pre-call value
	v, err := conn.EvalReadOnly(mock.AccountA, namesID, "owner-of",
		[]contract.Value{contract.String("alice")})
	if err != nil {
		t.Fatal(err)
	}
	opt := v.(contract.OptionalValue)
	if opt.IsNone() || string(opt.Inner.(contract.String)) != mock.AccountA.String() {
		t.Fatalf("expect alice still owned, got %v", v)
	}
	// the consumed preorder entry came back with the rollback
	v, err = conn.EvalReadOnly(mock.AccountA, namesID, "preordered-by", []contract.Value{hash2})
	if err != nil {
		t.Fatal(err)
	}
	if v.(contract.OptionalValue).IsNone() {
		t.Fatal("expect hash2 preorder entry restored")
	}
}

func TestInitMemoryExceededLeavesUnregistered(t *testing.T) {
	cfg := contract.DefaultContractConfig()
	cfg.MemoryCeiling = "4k"
	chain := newChain(t, cfg)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	bigID := principal.NewContractIdentifier(mock.AccountA, "big-init")

	_, err = conn.InitializeSmartContract(mock.AccountA, bigID, bigInitCodeKey, nil)
	if !errors.Is(err, contract.ErrMemoryExceeded) {
		t.Fatalf("expect ErrMemoryExceeded, got %v", err)
	}

	// the identifier stayed unregistered: the re-attempt fails on memory
	// again, never on duplicate registration
	_, err = conn.InitializeSmartContract(mock.AccountA, bigID, bigInitCodeKey, nil)
	if errors.Is(err, contract.ErrContractExists) {
		t.Fatal("expect identifier unregistered after failed init")
	}
	if !errors.Is(err, contract.ErrMemoryExceeded) {
		t.Fatalf("expect ErrMemoryExceeded, got %v", err)
	}
}

func TestNestedCallMemoryAccumulation(t *testing.T) {
	cfg := contract.DefaultContractConfig()
	cfg.MemoryCeiling = "4k"
	chain := newChain(t, cfg)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	wideID := principal.NewContractIdentifier(mock.AccountA, "wide")
	if _, err := conn.InitializeSmartContract(mock.AccountA, wideID, wideCodeKey, nil); err != nil {
		t.Fatal(err)
	}

	// three frames of 1 KiB bindings fit under the 4 KiB ceiling
	res, err := conn.RunContractCall(mock.AccountA, nil, wideID, "chain",
		[]contract.Value{contract.UInt(2)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect shallow chain to commit, got %v", res.Outcome)
	}

	// one more frame crosses it
	_, err = conn.RunContractCall(mock.AccountA, nil, wideID, "chain",
		[]contract.Value{contract.UInt(3)}, nil)
	if !errors.Is(err, contract.ErrMemoryExceeded) {
		t.Fatalf("expect ErrMemoryExceeded, got %v", err)
	}
}

func TestAbortCallbackVetoes(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}

	_, err = conn.RunContractCall(mock.AccountA, nil, tokensID, "token-transfer",
		[]contract.Value{contract.NewPrincipalValue(mock.AccountB), contract.UInt(100)},
		func(snap *state.CallSnapshot) bool {
			if len(snap.RWSet.WSet) == 0 {
				t.Error("expect write set in snapshot")
			}
			return true
		})
	if !errors.Is(err, contract.ErrAbortedByCallback) {
		t.Fatalf("expect ErrAbortedByCallback, got %v", err)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 10000 {
		t.Fatalf("expect vetoed transfer undone, got A=%d", got)
	}

	// a false veto commits normally
	res, err := conn.RunContractCall(mock.AccountA, nil, tokensID, "token-transfer",
		[]contract.Value{contract.NewPrincipalValue(mock.AccountB), contract.UInt(100)},
		func(snap *state.CallSnapshot) bool { return false })
	if err != nil || res.Outcome != bridge.OutcomeOK {
		t.Fatalf("expect committed transfer, got %v %v", res, err)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 9900 {
		t.Fatalf("expect A=9900, got %d", got)
	}
}

func TestAbortCallbackOnInit(t *testing.T) {
	chain := newChain(t, nil)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.InitializeSmartContract(mock.AccountA, tokensID, mock.TokensCodeKey,
		func(snap *state.CallSnapshot) bool { return true })
	if !errors.Is(err, contract.ErrAbortedByCallback) {
		t.Fatalf("expect ErrAbortedByCallback, got %v", err)
	}

	// the vetoed registration left no trace
	if _, err := conn.InitializeSmartContract(mock.AccountA, tokensID, mock.TokensCodeKey, nil); err != nil {
		t.Fatalf("expect clean re-init, got %v", err)
	}
}

func TestAsTransactionNesting(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}

	err = conn.AsTransaction(func() error {
		transfer(t, conn, mock.AccountA, mock.AccountB, 100)

		// the inner scope rolls back without touching the outer write
		innerErr := conn.AsTransaction(func() error {
			transfer(t, conn, mock.AccountA, mock.AccountB, 200)
			return errors.New("abandon inner scope")
		})
		if innerErr == nil {
			t.Fatal("expect inner error")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := balanceOf(t, conn, mock.AccountA); got != 9900 {
		t.Fatalf("expect only outer transfer applied, got A=%d", got)
	}
}

func TestRunContractCallRejectsNonPublic(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.RunContractCall(mock.AccountA, nil, tokensID, "get-balance",
		[]contract.Value{contract.NewPrincipalValue(mock.AccountA)}, nil)
	if !errors.Is(err, contract.ErrNonPublicFunction) {
		t.Fatalf("expect ErrNonPublicFunction, got %v", err)
	}
	_, err = conn.RunContractCall(mock.AccountA, nil, tokensID, "no-such-fn", nil, nil)
	if !errors.Is(err, contract.ErrFunctionNotFound) {
		t.Fatalf("expect ErrFunctionNotFound, got %v", err)
	}
}

func TestEvalReadOnlyTypeError(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	_, err = conn.EvalReadOnly(mock.AccountA, tokensID, "is-standard-account",
		[]contract.Value{contract.Int(3)})
	var typeErr *contract.TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expect TypeError, got %v", err)
	}
}

func TestUncommittedBlockLeavesNoTrace(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	// open a block, mutate, drop it without committing
	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	transfer(t, conn, mock.AccountA, mock.AccountB, 5000)
	conn = nil

	// a sibling block on the same parent sees the committed state only
	conn2, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, conn2, mock.AccountA); got != 10000 {
		t.Fatalf("expect dropped block invisible, got A=%d", got)
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	analysis, err := conn.AnalyzeSmartContract(tokensID, mock.TokensCodeKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Functions) == 0 {
		t.Fatal("expect analyzed functions")
	}
	if err := conn.SaveAnalysis(tokensID, analysis); err != nil {
		t.Fatal(err)
	}
	got, err := conn.GetAnalysis(tokensID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Contract != tokensID.String() || len(got.Functions) != len(analysis.Functions) {
		t.Fatalf("bad analysis round trip: %+v", got)
	}
}

func TestCommittedStateSurvivesBlocks(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	transfer(t, conn, mock.AccountA, mock.AccountB, 100)
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}

	conn, err = chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, conn, mock.AccountA); got != 9900 {
		t.Fatalf("expect committed transfer visible, got A=%d", got)
	}
}

func TestHeaderFeedsBuiltins(t *testing.T) {
	chain := newChain(t, nil)
	clockID := principal.NewContractIdentifier(mock.AccountA, "clock")

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.InitializeSmartContract(mock.AccountA, clockID, clockCodeKey, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := chain.Commit(conn); err != nil {
		t.Fatal(err)
	}

	conn, err = chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	v, err := conn.EvalReadOnly(mock.AccountA, clockID, "get-block-time", nil)
	if err != nil {
		t.Fatal(err)
	}
	wantTime := mock.GenesisTime + conn.BlockHeight()*mock.BlockInterval
	if int64(v.(contract.Int)) != wantTime {
		t.Fatalf("expect block time %d, got %v", wantTime, v)
	}
	if conn.BlockTime() != wantTime {
		t.Fatalf("expect connection block time %d, got %d", wantTime, conn.BlockTime())
	}
	v, err = conn.EvalReadOnly(mock.AccountA, clockID, "get-block-height", nil)
	if err != nil {
		t.Fatal(err)
	}
	if int64(v.(contract.Int)) != conn.BlockHeight() {
		t.Fatalf("expect block height %d, got %v", conn.BlockHeight(), v)
	}
}

func TestFoldFailureSurfacesError(t *testing.T) {
	chain := newChain(t, nil)
	hookedID := principal.NewContractIdentifier(mock.AccountA, "hooked")

	conn, err := chain.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.InitializeSmartContract(mock.AccountA, hookedID, hookedCodeKey, nil); err != nil {
		t.Fatal(err)
	}

	// sealing the block mid-call closes the pending overlay, so the
	// final fold of the call scope must fail loudly instead of
	// reporting success over lost writes
	hookFn = func() { conn.CommitBlock() }
	defer func() { hookFn = nil }()

	res, err := conn.RunContractCall(mock.AccountA, nil, hookedID, "poke", nil, nil)
	if err == nil {
		t.Fatalf("expect error when fold fails, got %+v", res)
	}
	if !errors.Is(err, contract.ErrSandboxClosed) {
		t.Fatalf("expect ErrSandboxClosed, got %v", err)
	}
}

func TestTestGenesisBlockLiftsCeilings(t *testing.T) {
	cfg := contract.DefaultContractConfig()
	cfg.MemoryCeiling = "4k"
	chain := newChain(t, cfg)
	bigID := principal.NewContractIdentifier(mock.AccountA, "big")

	id := ledger.NewBlockID([]byte{1})
	hdb := mock.NewHeaderDB()
	hdb.SetHeader(id, 0, mock.GenesisTime)
	conn, err := chain.Manager.BeginTestGenesisBlock(id, hdb, nil)
	if err != nil {
		t.Fatal(err)
	}
	// the initializer binds 8k, far past the configured ceiling
	if _, err := conn.InitializeSmartContract(mock.AccountA, bigID, bigInitCodeKey, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.CommitBlock(); err != nil {
		t.Fatal(err)
	}
}

func TestBeginBlockHeaderMismatch(t *testing.T) {
	chain := newChain(t, nil)
	setupTokens(t, chain)

	// a header whose height disagrees with the chain
	id := ledger.NewBlockID([]byte{0xee})
	hdb := mock.NewHeaderDB()
	hdb.SetHeader(id, 99, mock.GenesisTime)
	if _, err := chain.Manager.BeginBlock(chain.Tip(), id, hdb, chain.BurnDB); err == nil {
		t.Fatal("expect error on header height mismatch")
	}

	// a missing header is an error, not a silent zero
	id = ledger.NewBlockID([]byte{0xef})
	if _, err := chain.Manager.BeginBlock(chain.Tip(), id, mock.NewHeaderDB(), chain.BurnDB); err == nil {
		t.Fatal("expect error on missing header")
	}
}
