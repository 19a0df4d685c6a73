// Package principal 定义链上身份（账户地址与合约标识）及其网络分类规则
package principal

import (
	"bytes"
	"fmt"

	"github.com/quartzlabs/quartzcore/lib/crypto/hash"
)

// Network is the network epoch an address version byte is classified
// against. The mainnet and testnet version sets are disjoint.
type Network int

const (
	NetworkMainnet Network = iota
	NetworkTestnet
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", int(n))
	}
}

// Address version bytes. The value doubles as the index of the version
// character in the c32 alphabet, so 'SP...' carries version 22.
const (
	VersionMainnetSingleSig byte = 22 // 'P'
	VersionMainnetMultiSig  byte = 20 // 'M'
	VersionTestnetSingleSig byte = 26 // 'T'
	VersionTestnetMultiSig  byte = 21 // 'N'
)

// HashSize is the width of the address body digest.
const HashSize = 20

// Principal is an account or contract identity.
type Principal interface {
	fmt.Stringer
	// Version is the address version byte the principal is classified by.
	// For contract principals this is the issuer's version byte.
	Version() byte
}

// StandardPrincipal is a plain account address: version byte plus a
// 20 byte public key digest.
type StandardPrincipal struct {
	version byte
	hash    [HashSize]byte
}

func NewStandardPrincipal(version byte, hash [HashSize]byte) StandardPrincipal {
	return StandardPrincipal{version: version, hash: hash}
}

// FromPublicKey derives the address of a serialized public key, the
// standard hash160 digest.
func FromPublicKey(version byte, pubKey []byte) StandardPrincipal {
	var h [HashSize]byte
	copy(h[:], hash.Hash160(pubKey))
	return StandardPrincipal{version: version, hash: h}
}

func (p StandardPrincipal) Version() byte {
	return p.version
}

func (p StandardPrincipal) Hash() [HashSize]byte {
	return p.hash
}

func (p StandardPrincipal) String() string {
	return encodeAddress(p.version, p.hash[:])
}

func (p StandardPrincipal) Equal(o StandardPrincipal) bool {
	return p.version == o.version && bytes.Equal(p.hash[:], o.hash[:])
}

// ContractIdentifier names one contract globally: the issuing principal
// plus the contract name, unique per chain history.
type ContractIdentifier struct {
	Issuer StandardPrincipal
	Name   string
}

func NewContractIdentifier(issuer StandardPrincipal, name string) ContractIdentifier {
	return ContractIdentifier{Issuer: issuer, Name: name}
}

// Version classifies a contract principal by the version byte of its
// issuing address, never by the contract name.
func (c ContractIdentifier) Version() byte {
	return c.Issuer.Version()
}

func (c ContractIdentifier) String() string {
	return c.Issuer.String() + "." + c.Name
}

func (c ContractIdentifier) Equal(o ContractIdentifier) bool {
	return c.Issuer.Equal(o.Issuer) && c.Name == o.Name
}

// IsStandard reports whether the principal's version byte belongs to the
// designated set for the network epoch. No address is standard on both
// epochs; an unrecognized version byte is standard on neither.
func IsStandard(p Principal, network Network) bool {
	version := p.Version()
	switch network {
	case NetworkMainnet:
		return version == VersionMainnetSingleSig || version == VersionMainnetMultiSig
	case NetworkTestnet:
		return version == VersionTestnetSingleSig || version == VersionTestnetMultiSig
	default:
		return false
	}
}
