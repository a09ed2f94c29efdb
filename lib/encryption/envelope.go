package encryption

import (
	"github.com/aleph-im/aleph-go/lib"
)

// Envelope is a hybrid encryption construction bound to one curve
type Envelope interface {
	// Curve() returns the curve this envelope is built on
	Curve() Curve
	// Encrypt() seals plaintext for the holder of targetKey
	Encrypt(targetKey, plaintext []byte) ([]byte, error)
	// Decrypt() opens an envelope with the account's local private key
	Decrypt(account *lib.Account, envelope []byte) ([]byte, error)
	// SelfKey() returns the key to pass to Encrypt so that the account itself can Decrypt
	SelfKey(account *lib.Account) ([]byte, error)
}

// NewEnvelope() returns the construction for a curve
func NewEnvelope(c Curve) (Envelope, lib.ErrorI) {
	switch c {
	case CurveSECP256K1:
		return SECP256K1Envelope{}, nil
	case CurveSECP256R1:
		return SECP256R1Envelope{}, nil
	case CurveED25519:
		return ED25519Envelope{}, nil
	default:
		return nil, ErrUnknownCurve(string(c))
	}
}

// localKey() returns the account's private key or ErrNoLocalKey
func localKey(account *lib.Account) ([]byte, lib.ErrorI) {
	pk, ok := account.PrivateKey()
	if !ok {
		return nil, ErrNoLocalKey()
	}
	return pk, nil
}
