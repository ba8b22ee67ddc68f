// Package room derives public room addresses from secret phrases.
package room

import (
	"crypto/sha256"
	"encoding/hex"
)

// AddressLength is the length of a room address in hex characters.
const AddressLength = sha256.Size * 2

// DeriveAddress hashes a secret phrase into the room's public address:
// lowercase hex SHA-256 of the phrase's UTF-8 bytes. Every holder of the
// phrase derives the identical address; the address reveals nothing about
// the phrase.
func DeriveAddress(phrase string) string {
	sum := sha256.Sum256([]byte(phrase))
	return hex.EncodeToString(sum[:])
}

// ValidAddress reports whether s has the shape of a derived room address.
func ValidAddress(s string) bool {
	if len(s) != AddressLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
