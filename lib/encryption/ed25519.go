package encryption

import (
	"crypto/rand"
	"errors"

	"github.com/aleph-im/aleph-go/lib"
	"golang.org/x/crypto/nacl/secretbox"
)

/*
	ed25519 envelope layout: nonce (24) || secretbox(plaintext)
	The box is keyed by the first 32 bytes of raw key material with no key exchange, so whoever encrypts must
	already hold the recipient's private key bytes. This is weaker than the secp256k1 and secp256r1 envelopes.
*/

const (
	boxNonceSize = 24
	boxKeySize   = 32
)

// ED25519Envelope is a NaCl secretbox construction
type ED25519Envelope struct{}

var _ Envelope = ED25519Envelope{}

// Curve() returns ed25519
func (ED25519Envelope) Curve() Curve { return CurveED25519 }

// Encrypt() seals plaintext with a fresh random nonce
func (ED25519Envelope) Encrypt(targetKey, plaintext []byte) ([]byte, error) {
	key, err := boxKey(targetKey)
	if err != nil {
		return nil, err
	}
	var nonce [boxNonceSize]byte
	if _, e := rand.Read(nonce[:]); e != nil {
		return nil, ErrEncrypt(e)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, key), nil
}

// Decrypt() opens the box with the account's private key
func (ED25519Envelope) Decrypt(account *lib.Account, envelope []byte) ([]byte, error) {
	raw, e := localKey(account)
	if e != nil {
		return nil, e
	}
	key, err := boxKey(raw)
	if err != nil {
		return nil, err
	}
	if len(envelope) < boxNonceSize+secretbox.Overhead {
		return nil, ErrMalformedEnvelope("ed25519 envelope is too short")
	}
	var nonce [boxNonceSize]byte
	copy(nonce[:], envelope[:boxNonceSize])
	plaintext, ok := secretbox.Open(nil, envelope[boxNonceSize:], &nonce, key)
	if !ok {
		return nil, ErrMACMismatch()
	}
	return plaintext, nil
}

// SelfKey() returns the account's private key, the only key that opens the box later
func (ED25519Envelope) SelfKey(account *lib.Account) ([]byte, error) {
	key, e := localKey(account)
	if e != nil {
		return nil, e
	}
	return key, nil
}

// boxKey() takes the first 32 bytes of the key material
func boxKey(material []byte) (*[boxKeySize]byte, lib.ErrorI) {
	if len(material) < boxKeySize {
		return nil, ErrInvalidRecipientKey(errors.New("key material is shorter than 32 bytes"))
	}
	key := new([boxKeySize]byte)
	copy(key[:], material[:boxKeySize])
	return key, nil
}
