package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

const (
	HashSize    = sha256.Size
	Hash160Size = ripemd160.Size
)

/*
	The chains served here agree on a small set of digests:
	- SHA-256 for sign docs, item hashes and the avalanche message digest
	- double SHA-256 for the NULS family
	- RIPEMD-160(SHA-256(pub)) as the public key hash in NULS, cosmos and avalanche addresses
*/

// Hasher() returns the global hashing algorithm used
func Hasher() hash.Hash { return sha256.New() }

// Hash() executes SHA-256 on input bytes
func Hash(msg []byte) []byte {
	h := sha256.Sum256(msg)
	return h[:]
}

// HashTwice() executes SHA-256(SHA-256(msg))
func HashTwice(msg []byte) []byte { return Hash(Hash(msg)) }

// Hash160() executes RIPEMD-160(SHA-256(msg))
func Hash160(msg []byte) []byte {
	hasher := ripemd160.New()
	hasher.Write(Hash(msg))
	return hasher.Sum(nil)
}

// HashString() returns the hex byte version of a hash
func HashString(msg []byte) string { return hex.EncodeToString(Hash(msg)) }
