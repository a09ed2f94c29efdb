package nuls

import (
	"encoding/hex"
	"strings"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
)

// CheckPrivateKey() normalizes a hex private key, a 66 character key with a leading '00' is trimmed
// returns false if the result is not 64 hex characters holding a valid secp256k1 scalar
func CheckPrivateKey(privateKey string) (string, bool) {
	if len(privateKey) == 66 && strings.HasPrefix(privateKey, "00") {
		privateKey = privateKey[2:]
	}
	if len(privateKey) != 64 {
		return "", false
	}
	bz, err := hex.DecodeString(privateKey)
	if err != nil {
		return "", false
	}
	if _, err = crypto.BytesToSECP256K1Private(bz); err != nil {
		return "", false
	}
	return privateKey, true
}

// PrivateKeyToPublicKey() returns the 33 byte compressed public key
func PrivateKeyToPublicKey(privateKey []byte) ([]byte, lib.ErrorI) {
	pk, err := crypto.BytesToSECP256K1Private(privateKey)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	return pk.SECP256K1PublicKey().Bytes(), nil
}
