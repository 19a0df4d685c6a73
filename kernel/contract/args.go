package contract

import (
	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// Argument accessors used by contract function bodies. Each returns a
// TypeError when the slot holds a value of the wrong kind, which the
// engine surfaces as a check failure rather than a runtime panic.

func ArgInt(args []Value, i int) (Int, error) {
	v, ok := args[i].(Int)
	if !ok {
		return 0, &TypeError{Expected: "int", Got: args[i].ValueType()}
	}
	return v, nil
}

func ArgUInt(args []Value, i int) (UInt, error) {
	v, ok := args[i].(UInt)
	if !ok {
		return 0, &TypeError{Expected: "uint", Got: args[i].ValueType()}
	}
	return v, nil
}

func ArgBool(args []Value, i int) (Bool, error) {
	v, ok := args[i].(Bool)
	if !ok {
		return false, &TypeError{Expected: "bool", Got: args[i].ValueType()}
	}
	return v, nil
}

func ArgBuffer(args []Value, i int) (Buffer, error) {
	v, ok := args[i].(Buffer)
	if !ok {
		return nil, &TypeError{Expected: "buff", Got: args[i].ValueType()}
	}
	return v, nil
}

func ArgString(args []Value, i int) (String, error) {
	v, ok := args[i].(String)
	if !ok {
		return "", &TypeError{Expected: "string", Got: args[i].ValueType()}
	}
	return v, nil
}

func ArgPrincipal(args []Value, i int) (principal.Principal, error) {
	v, ok := args[i].(PrincipalValue)
	if !ok {
		return nil, &TypeError{Expected: "principal", Got: args[i].ValueType()}
	}
	return v.Principal, nil
}

// IsStandardValue is the is-standard builtin: it reports whether v is a
// principal valid on network. A non-principal value is a type error, not
// a false.
func IsStandardValue(v Value, network principal.Network) (Bool, error) {
	pv, ok := v.(PrincipalValue)
	if !ok {
		return false, &TypeError{Expected: "principal", Got: v.ValueType()}
	}
	return Bool(principal.IsStandard(pv.Principal, network)), nil
}
