// Package ledger provides the transfer collaborators: a mock that fabricates
// transaction hashes and a client for an external relayer that holds keys.
package ledger

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const addressHexLen = 40

// IsValidAddress accepts 0x-prefixed 20-byte hex addresses. Single-case
// addresses carry no checksum; mixed-case ones must satisfy EIP-55.
func IsValidAddress(address string) bool {
	if len(address) != 2+addressHexLen || address[:2] != "0x" {
		return false
	}
	body := address[2:]
	if _, err := hex.DecodeString(body); err != nil {
		return false
	}
	lower := strings.ToLower(body)
	if body == lower || body == strings.ToUpper(body) {
		return true
	}
	return body == checksum(lower)
}

// ChecksumAddress returns the EIP-55 form of a valid address.
func ChecksumAddress(address string) string {
	return "0x" + checksum(strings.ToLower(address[2:]))
}

func checksum(lowerHex string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lowerHex))
	digest := h.Sum(nil)

	out := []byte(lowerHex)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}
