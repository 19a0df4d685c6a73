package principal

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/quartzlabs/quartzcore/lib/crypto/hash"
)

// Crockford base32 alphabet used by textual addresses.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	addressPrefix = 'S'
	checksumSize  = 4
)

var c32Big = big.NewInt(32)

// c32Encode encodes raw bytes: one '0' per leading zero byte, then the
// remainder as a big-endian base32 number with no leading zero digits.
func c32Encode(raw []byte) string {
	var sb strings.Builder
	i := 0
	for ; i < len(raw) && raw[i] == 0; i++ {
		sb.WriteByte('0')
	}
	if i == len(raw) {
		return sb.String()
	}

	n := new(big.Int).SetBytes(raw[i:])
	var digits []byte
	mod := new(big.Int)
	for n.Sign() > 0 {
		n.DivMod(n, c32Big, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for j := len(digits) - 1; j >= 0; j-- {
		sb.WriteByte(digits[j])
	}
	return sb.String()
}

// c32Decode reverses c32Encode into exactly size bytes.
func c32Decode(s string, size int) ([]byte, error) {
	zeros := 0
	for ; zeros < len(s) && s[zeros] == '0'; zeros++ {
	}

	n := new(big.Int)
	for i := zeros; i < len(s); i++ {
		d := strings.IndexByte(c32Alphabet, s[i])
		if d < 0 {
			return nil, errors.Errorf("invalid c32 character %q", s[i])
		}
		n.Mul(n, c32Big)
		n.Add(n, big.NewInt(int64(d)))
	}

	body := n.Bytes()
	if zeros+len(body) != size {
		return nil, errors.Errorf("c32 payload length mismatch: expect %d got %d", size, zeros+len(body))
	}
	out := make([]byte, size)
	copy(out[zeros:], body)
	return out, nil
}

func addressChecksum(version byte, payload []byte) []byte {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, version)
	buf = append(buf, payload...)
	return hash.DoubleSha256(buf)[:checksumSize]
}

// encodeAddress renders a version byte plus digest as a textual address:
// 'S', the version character, then the checksummed c32 body.
func encodeAddress(version byte, payload []byte) string {
	if int(version) >= len(c32Alphabet) {
		// version bytes are 5 bit by construction
		return ""
	}
	body := make([]byte, 0, len(payload)+checksumSize)
	body = append(body, payload...)
	body = append(body, addressChecksum(version, payload)...)
	return string(addressPrefix) + string(c32Alphabet[version]) + c32Encode(body)
}

// ParseStandardPrincipal parses a textual standard address.
func ParseStandardPrincipal(addr string) (StandardPrincipal, error) {
	if len(addr) < 2 || addr[0] != addressPrefix {
		return StandardPrincipal{}, errors.Errorf("invalid address %q", addr)
	}
	version := strings.IndexByte(c32Alphabet, addr[1])
	if version < 0 {
		return StandardPrincipal{}, errors.Errorf("invalid address version character %q", addr[1])
	}

	body, err := c32Decode(addr[2:], HashSize+checksumSize)
	if err != nil {
		return StandardPrincipal{}, errors.Wrapf(err, "decode address %q", addr)
	}

	payload, sum := body[:HashSize], body[HashSize:]
	if want := addressChecksum(byte(version), payload); string(want) != string(sum) {
		return StandardPrincipal{}, errors.Errorf("address %q checksum mismatch", addr)
	}

	var h [HashSize]byte
	copy(h[:], payload)
	return NewStandardPrincipal(byte(version), h), nil
}

// ParsePrincipal parses either a standard address or a qualified
// contract identifier of the form "<address>.<name>".
func ParsePrincipal(text string) (Principal, error) {
	if idx := strings.IndexByte(text, '.'); idx >= 0 {
		issuer, err := ParseStandardPrincipal(text[:idx])
		if err != nil {
			return nil, err
		}
		name := text[idx+1:]
		if name == "" {
			return nil, errors.Errorf("empty contract name in %q", text)
		}
		return NewContractIdentifier(issuer, name), nil
	}
	return ParseStandardPrincipal(text)
}
