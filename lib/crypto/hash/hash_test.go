package hash

import (
	"bytes"
	"testing"
)

func Test_Hash(t *testing.T) {
	msg := []byte("this is a test msg")

	sha256 := UsingSha256(msg)
	doubleSha256 := DoubleSha256(msg)
	ripemd160 := UsingRipemd160(msg)

	if len(sha256) != 32 || len(doubleSha256) != 32 {
		t.Fatalf("bad sha256 length")
	}
	if len(ripemd160) != 20 {
		t.Fatalf("bad ripemd160 length")
	}
	if !bytes.Equal(doubleSha256, UsingSha256(sha256)) {
		t.Errorf("double sha256 mismatch")
	}
	if !bytes.Equal(Hash160(msg), UsingRipemd160(sha256)) {
		t.Errorf("hash160 mismatch")
	}
}
