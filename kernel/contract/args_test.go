package contract

import (
	"errors"
	"testing"

	"github.com/quartzlabs/quartzcore/kernel/principal"
)

func TestArgAccessorsTypeError(t *testing.T) {
	args := []Value{String("nope")}

	if _, err := ArgInt(args, 0); err == nil {
		t.Error("expect type error for int slot")
	}
	if _, err := ArgBuffer(args, 0); err == nil {
		t.Error("expect type error for buff slot")
	}
	if _, err := ArgPrincipal(args, 0); err == nil {
		t.Error("expect type error for principal slot")
	}

	var typeErr *TypeError
	_, err := ArgUInt(args, 0)
	if !errors.As(err, &typeErr) {
		t.Fatalf("expect TypeError, got %v", err)
	}
	if typeErr.Expected != "uint" || typeErr.Got != TypeString {
		t.Fatalf("bad type error: %v", typeErr)
	}
}

func TestIsStandardValue(t *testing.T) {
	mainnet := principal.NewStandardPrincipal(principal.VersionMainnetSingleSig, [principal.HashSize]byte{1})

	ok, err := IsStandardValue(NewPrincipalValue(mainnet), principal.NetworkMainnet)
	if err != nil || !bool(ok) {
		t.Fatalf("expect standard on mainnet, got %v %v", ok, err)
	}
	ok, err = IsStandardValue(NewPrincipalValue(mainnet), principal.NetworkTestnet)
	if err != nil || bool(ok) {
		t.Fatalf("expect not standard on testnet, got %v %v", ok, err)
	}

	// non-principal values are a type error, not a false
	var typeErr *TypeError
	if _, err := IsStandardValue(Int(3), principal.NetworkMainnet); !errors.As(err, &typeErr) {
		t.Fatalf("expect TypeError, got %v", err)
	}
}
