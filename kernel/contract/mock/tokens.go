// Package mock provides registered sample contracts and a chain harness
// for engine tests.
package mock

import (
	"strconv"

	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// Registered code keys.
const (
	TokensCodeKey = "mock/tokens"
	NamesCodeKey  = "mock/names"
)

const balanceBucket = "balances"

// Well known fixture accounts, the funded balances mirror the fixture
// amounts used throughout the engine tests.
var (
	AccountA = principal.NewStandardPrincipal(principal.VersionTestnetSingleSig, [principal.HashSize]byte{0xA1})
	AccountB = principal.NewStandardPrincipal(principal.VersionTestnetSingleSig, [principal.HashSize]byte{0xB2})
	// BurnAddress is the all-zero digest account, tokens sent there are
	// unrecoverable.
	BurnAddress = principal.NewStandardPrincipal(principal.VersionTestnetSingleSig, [principal.HashSize]byte{})
)

const (
	fundA        = 10000
	fundB        = 200
	fundFaucet   = 4
	faucetAmount = 1
)

func getBalance(ctx contract.KContext, who principal.Principal) (uint64, error) {
	raw, err := ctx.Get(balanceBucket, []byte(who.String()))
	if err == contract.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func setBalance(ctx contract.KContext, who principal.Principal, n uint64) error {
	return ctx.Put(balanceBucket, []byte(who.String()), []byte(strconv.FormatUint(n, 10)))
}

func tokenCredit(ctx contract.KContext, who principal.Principal, amount uint64) error {
	balance, err := getBalance(ctx, who)
	if err != nil {
		return err
	}
	return setBalance(ctx, who, balance+amount)
}

// tokenTransfer moves amount from the visible sender. A zero amount or
// an insufficient balance yields an err response, not an engine error.
func tokenTransfer(ctx contract.KContext, to principal.Principal, amount uint64) (contract.Value, error) {
	if amount == 0 {
		return contract.Err(contract.Bool(false)), nil
	}
	from := ctx.Sender()
	fromBalance, err := getBalance(ctx, from)
	if err != nil {
		return nil, err
	}
	if fromBalance < amount {
		return contract.Err(contract.Bool(false)), nil
	}
	if err := setBalance(ctx, from, fromBalance-amount); err != nil {
		return nil, err
	}
	// the credit re-reads the balance, so a self transfer conserves it
	if err := tokenCredit(ctx, to, amount); err != nil {
		return nil, err
	}
	return contract.Ok(contract.Bool(true)), nil
}

func init() {
	contract.RegisterCode(TokensCodeKey, &contract.Contract{
		Init: func(ctx contract.KContext) error {
			if err := tokenCredit(ctx, AccountA, fundA); err != nil {
				return err
			}
			if err := tokenCredit(ctx, AccountB, fundB); err != nil {
				return err
			}
			// the faucet pays out of the contract's own account
			return tokenCredit(ctx, ctx.ContractID(), fundFaucet)
		},
		Functions: map[string]*contract.Function{
			"token-transfer": {
				Name: "token-transfer", Kind: contract.KindPublic, Arity: 2,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					to, err := contract.ArgPrincipal(args, 0)
					if err != nil {
						return nil, err
					}
					amount, err := contract.ArgUInt(args, 1)
					if err != nil {
						return nil, err
					}
					return tokenTransfer(ctx, to, uint64(amount))
				},
			},
			"faucet": {
				Name: "faucet", Kind: contract.KindPublic, Arity: 0,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					originalSender := ctx.Sender()
					return ctx.AsContract(func() (contract.Value, error) {
						return tokenTransfer(ctx, originalSender, faucetAmount)
					})
				},
			},
			"mint-after": {
				Name: "mint-after", Kind: contract.KindPublic, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					blockToRelease, err := contract.ArgUInt(args, 0)
					if err != nil {
						return nil, err
					}
					if ctx.BlockHeight() < int64(blockToRelease) {
						return contract.Err(contract.String("must be in the future")), nil
					}
					return ctx.CallPrivate("do-faucet", nil)
				},
			},
			"do-faucet": {
				Name: "do-faucet", Kind: contract.KindPrivate, Arity: 0,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					originalSender := ctx.Sender()
					return ctx.AsContract(func() (contract.Value, error) {
						return tokenTransfer(ctx, originalSender, faucetAmount)
					})
				},
			},
			"get-balance": {
				Name: "get-balance", Kind: contract.KindReadOnly, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					who, err := contract.ArgPrincipal(args, 0)
					if err != nil {
						return nil, err
					}
					balance, err := getBalance(ctx, who)
					if err != nil {
						return nil, err
					}
					return contract.UInt(balance), nil
				},
			},
			"is-standard-account": {
				Name: "is-standard-account", Kind: contract.KindReadOnly, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					return contract.IsStandardValue(args[0], ctx.Network())
				},
			},
		},
	})
}
