package mock

import (
	"github.com/quartzlabs/quartzcore/kernel/contract"
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// Name registry error codes returned as err responses.
const (
	ErrCodeBurnFailed    = 1
	ErrCodePreordered    = 2
	ErrCodeNameTaken     = 4
	ErrCodeNotPreordered = 5
)

const (
	preorderBucket = "preorder"
	namesBucket    = "names"
)

// NamesDeps wires the names contract to its token contract. Set before
// the names contract is initialized in a block.
type NamesDeps struct {
	Tokens principal.ContractIdentifier
}

var namesDeps NamesDeps

// SetNamesDeps configures the token contract the registry burns through.
func SetNamesDeps(deps NamesDeps) {
	namesDeps = deps
}

func init() {
	contract.RegisterCode(NamesCodeKey, &contract.Contract{
		Functions: map[string]*contract.Function{
			// preorder burns the fee and records the salted name hash.
			// Re-preordering the same hash is rejected.
			"preorder": {
				Name: "preorder", Kind: contract.KindPublic, Arity: 2,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					nameHash, err := contract.ArgBuffer(args, 0)
					if err != nil {
						return nil, err
					}
					amount, err := contract.ArgUInt(args, 1)
					if err != nil {
						return nil, err
					}

					_, err = ctx.Get(preorderBucket, nameHash)
					if err == nil {
						return contract.Err(contract.Int(ErrCodePreordered)), nil
					}
					if err != contract.ErrNotFound {
						return nil, err
					}

					burn, err := ctx.CallContract(namesDeps.Tokens, "token-transfer",
						[]contract.Value{contract.NewPrincipalValue(BurnAddress), amount})
					if err != nil {
						return nil, err
					}
					if resp, ok := burn.(contract.ResponseValue); ok && !resp.OK {
						return contract.Err(contract.Int(ErrCodeBurnFailed)), nil
					}

					if err := ctx.Put(preorderBucket, nameHash, []byte(ctx.Sender().String())); err != nil {
						return nil, err
					}
					return contract.Ok(contract.Bool(true)), nil
				},
			},
			// register claims a preordered name. The preorder entry is
			// consumed and the owner row written before the collision
			// check, so a rejected registration exercises whole call
			// rollback.
			"register": {
				Name: "register", Kind: contract.KindPublic, Arity: 2,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					nameHash, err := contract.ArgBuffer(args, 0)
					if err != nil {
						return nil, err
					}
					name, err := contract.ArgString(args, 1)
					if err != nil {
						return nil, err
					}

					preorderedBy, err := ctx.Get(preorderBucket, nameHash)
					if err == contract.ErrNotFound {
						return contract.Err(contract.Int(ErrCodeNotPreordered)), nil
					}
					if err != nil {
						return nil, err
					}
					if string(preorderedBy) != ctx.Sender().String() {
						return contract.Err(contract.Int(ErrCodeNotPreordered)), nil
					}

					_, lookupErr := ctx.Get(namesBucket, []byte(name))
					taken := lookupErr == nil
					if lookupErr != nil && lookupErr != contract.ErrNotFound {
						return nil, lookupErr
					}

					if err := ctx.Put(namesBucket, []byte(name), []byte(ctx.Sender().String())); err != nil {
						return nil, err
					}
					if err := ctx.Del(preorderBucket, nameHash); err != nil {
						return nil, err
					}
					if taken {
						return contract.Err(contract.Int(ErrCodeNameTaken)), nil
					}
					return contract.Ok(contract.Bool(true)), nil
				},
			},
			"owner-of": {
				Name: "owner-of", Kind: contract.KindReadOnly, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					name, err := contract.ArgString(args, 0)
					if err != nil {
						return nil, err
					}
					owner, err := ctx.Get(namesBucket, []byte(name))
					if err == contract.ErrNotFound {
						return contract.None(), nil
					}
					if err != nil {
						return nil, err
					}
					return contract.Some(contract.String(owner)), nil
				},
			},
			"preordered-by": {
				Name: "preordered-by", Kind: contract.KindReadOnly, Arity: 1,
				Handler: func(ctx contract.KContext, args []contract.Value) (contract.Value, error) {
					nameHash, err := contract.ArgBuffer(args, 0)
					if err != nil {
						return nil, err
					}
					who, err := ctx.Get(preorderBucket, nameHash)
					if err == contract.ErrNotFound {
						return contract.None(), nil
					}
					if err != nil {
						return nil, err
					}
					return contract.Some(contract.String(who)), nil
				},
			},
		},
	})
}
