package encryption

import (
	"crypto/rand"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
)

// eciesOverhead is ephemeral public key (65) + iv (16) + mac (32)
const eciesOverhead = 65 + 16 + 32

// SECP256K1Envelope delegates to the go-ethereum ECIES implementation (ECDH + AES-128-CTR + HMAC-SHA256)
type SECP256K1Envelope struct{}

var _ Envelope = SECP256K1Envelope{}

// Curve() returns secp256k1
func (SECP256K1Envelope) Curve() Curve { return CurveSECP256K1 }

// Encrypt() seals plaintext for a 33 or 65 byte secp256k1 public key
func (SECP256K1Envelope) Encrypt(targetKey, plaintext []byte) ([]byte, error) {
	pub, err := crypto.BytesToSECP256K1Public(targetKey)
	if err != nil {
		return nil, ErrInvalidRecipientKey(err)
	}
	out, err := ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(pub.PublicKey), plaintext, nil, nil)
	if err != nil {
		return nil, ErrEncrypt(err)
	}
	return out, nil
}

// Decrypt() opens the envelope with the account's secp256k1 private key
func (SECP256K1Envelope) Decrypt(account *lib.Account, envelope []byte) ([]byte, error) {
	key, e := localKey(account)
	if e != nil {
		return nil, e
	}
	if len(envelope) < eciesOverhead {
		return nil, ErrMalformedEnvelope("secp256k1 envelope is too short")
	}
	pk, err := crypto.BytesToSECP256K1Private(key)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	out, err := ecies.ImportECDSA(pk.PrivateKey).Decrypt(envelope, nil, nil)
	switch err {
	case nil:
		return out, nil
	case ecies.ErrInvalidMessage:
		return nil, ErrMACMismatch()
	case ecies.ErrInvalidPublicKey:
		return nil, ErrMalformedEnvelope(err.Error())
	default:
		return nil, ErrDecrypt(err)
	}
}

// SelfKey() returns the account's public key when it is a secp256k1 key, otherwise the key of the local scalar
func (SECP256K1Envelope) SelfKey(account *lib.Account) ([]byte, error) {
	if n := len(account.PublicKey); n == crypto.SECP256K1PubKeySize || n == crypto.SECP256K1UncompressedKeySize {
		return account.PublicKey, nil
	}
	key, e := localKey(account)
	if e != nil {
		return nil, e
	}
	pk, err := crypto.BytesToSECP256K1Private(key)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	return pk.SECP256K1PublicKey().Bytes(), nil
}
