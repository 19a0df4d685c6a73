package contract

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/quartzlabs/quartzcore/kernel/principal"
)

// ValueType tags the closed set of runtime value kinds.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeUInt
	TypeBool
	TypeBuffer
	TypeString
	TypePrincipal
	TypeResponse
	TypeOptional
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeUInt:
		return "uint"
	case TypeBool:
		return "bool"
	case TypeBuffer:
		return "buff"
	case TypeString:
		return "string"
	case TypePrincipal:
		return "principal"
	case TypeResponse:
		return "response"
	case TypeOptional:
		return "optional"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Value is one runtime value passed into or returned from contract
// functions. Size reports the metered byte footprint used by the
// memory budget.
type Value interface {
	ValueType() ValueType
	Size() int64
	String() string
}

// 整数按128位宽计费，与共识口径保持一致
const intValueSize = 16

type Int int64

func (v Int) ValueType() ValueType { return TypeInt }
func (v Int) Size() int64          { return intValueSize }
func (v Int) String() string       { return strconv.FormatInt(int64(v), 10) }

type UInt uint64

func (v UInt) ValueType() ValueType { return TypeUInt }
func (v UInt) Size() int64          { return intValueSize }
func (v UInt) String() string       { return "u" + strconv.FormatUint(uint64(v), 10) }

type Bool bool

func (v Bool) ValueType() ValueType { return TypeBool }
func (v Bool) Size() int64          { return 1 }
func (v Bool) String() string       { return strconv.FormatBool(bool(v)) }

type Buffer []byte

func (v Buffer) ValueType() ValueType { return TypeBuffer }
func (v Buffer) Size() int64          { return int64(len(v)) }
func (v Buffer) String() string       { return "0x" + hex.EncodeToString(v) }

type String string

func (v String) ValueType() ValueType { return TypeString }
func (v String) Size() int64          { return int64(len(v)) }
func (v String) String() string       { return strconv.Quote(string(v)) }

// PrincipalValue wraps an account or contract identity as a runtime value.
type PrincipalValue struct {
	Principal principal.Principal
}

func NewPrincipalValue(p principal.Principal) PrincipalValue {
	return PrincipalValue{Principal: p}
}

func (v PrincipalValue) ValueType() ValueType { return TypePrincipal }
func (v PrincipalValue) Size() int64          { return int64(1 + len(v.Principal.String())) }
func (v PrincipalValue) String() string       { return "'" + v.Principal.String() }

// ResponseValue is the tagged ok/err payload contract functions return in
// place of thrown exceptions.
type ResponseValue struct {
	OK    bool
	Inner Value
}

func Ok(inner Value) ResponseValue {
	return ResponseValue{OK: true, Inner: inner}
}

func Err(inner Value) ResponseValue {
	return ResponseValue{OK: false, Inner: inner}
}

func (v ResponseValue) ValueType() ValueType { return TypeResponse }

func (v ResponseValue) Size() int64 {
	if v.Inner == nil {
		return 1
	}
	return 1 + v.Inner.Size()
}

func (v ResponseValue) String() string {
	if v.OK {
		return fmt.Sprintf("(ok %v)", v.Inner)
	}
	return fmt.Sprintf("(err %v)", v.Inner)
}

// OptionalValue models some/none. A nil Inner is none.
type OptionalValue struct {
	Inner Value
}

func Some(inner Value) OptionalValue {
	return OptionalValue{Inner: inner}
}

func None() OptionalValue {
	return OptionalValue{}
}

func (v OptionalValue) IsNone() bool { return v.Inner == nil }

func (v OptionalValue) ValueType() ValueType { return TypeOptional }

func (v OptionalValue) Size() int64 {
	if v.Inner == nil {
		return 1
	}
	return 1 + v.Inner.Size()
}

func (v OptionalValue) String() string {
	if v.Inner == nil {
		return "none"
	}
	return fmt.Sprintf("(some %v)", v.Inner)
}

// SizeOf sums the metered footprint of a value list, the charge applied
// to argument frames and let bindings.
func SizeOf(values ...Value) int64 {
	var total int64
	for _, v := range values {
		total += v.Size()
	}
	return total
}
