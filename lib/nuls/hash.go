package nuls

import (
	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
)

// MessagePrefix is prepended to every NULS signed message
const MessagePrefix = "\x18NULS Signed Message:\n"

// MagicHash() returns SHA256(MessagePrefix || varint(len(buf)) || buf)
func MagicHash(buf []byte) ([]byte, lib.ErrorI) {
	body, err := lib.WriteWithLength(buf)
	if err != nil {
		return nil, err
	}
	return crypto.Hash(append([]byte(MessagePrefix), body...)), nil
}

// HashTwice() returns SHA256(SHA256(buf))
func HashTwice(buf []byte) []byte { return crypto.HashTwice(buf) }
