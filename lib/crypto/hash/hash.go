package hash

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"
)

// UsingSha256 get the hash result of data using SHA256
func UsingSha256(data []byte) []byte {
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}

// DoubleSha256 computes SHA256(SHA256(data))
func DoubleSha256(data []byte) []byte {
	return UsingSha256(UsingSha256(data))
}

// UsingRipemd160 get the hash result of data using RIPEMD160
func UsingRipemd160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(data)
	return h.Sum(nil)
}

// Hash160 computes RIPEMD160(SHA256(data)), the standard 20 byte
// address digest.
func Hash160(data []byte) []byte {
	return UsingRipemd160(UsingSha256(data))
}
