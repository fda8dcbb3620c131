// Package phone derives the shareable hash identity from a phone number.
package phone

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 digest of a phone number.
// The digest is the user's public identity: it appears in share URLs and
// upstream queries, while the number itself stays private. The exact
// format (full digest, lowercase hex) is part of the wire contract.
func Hash(phoneNumber string) string {
	sum := sha256.Sum256([]byte(phoneNumber))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether hash is the digest of phoneNumber.
func Verify(phoneNumber, hash string) bool {
	return Hash(phoneNumber) == hash
}
