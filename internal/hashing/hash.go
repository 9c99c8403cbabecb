// Package hashing computes the SHA-256 Merkle state root over a WalletSet
// and the inclusion proofs against it, mirroring the block hash commitments
// in the primitives package.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the lowercase hex SHA-256 digest of data.
func Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EmptyHash is the digest of an empty input, the state root of a WalletSet
// with no accounts.
func EmptyHash() string {
	return Hex(nil)
}
