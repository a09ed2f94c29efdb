package crypto

import (
	"bytes"
	"crypto/ecdh"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

// Big picture: DH is used to establish a shared secret, and then a hash of that secret is split into an encryption key and a MAC key

const (
	P256PrivKeySize          = 32
	P256UncompressedKeySize  = 65
	P256CompressedPubKeySize = 33
)

// NewP256PrivateKey() generates a new ephemeral P-256 (secp256r1) key
func NewP256PrivateKey() (*ecdh.PrivateKey, error) { return ecdh.P256().GenerateKey(rand.Reader) }

// BytesToP256Private() converts a 32 byte scalar into a P-256 private key
func BytesToP256Private(b []byte) (*ecdh.PrivateKey, error) { return ecdh.P256().NewPrivateKey(b) }

// BytesToP256Public() accepts a 65 byte uncompressed or a 33 byte compressed P-256 public key
func BytesToP256Public(b []byte) (*ecdh.PublicKey, error) {
	switch len(b) {
	case P256UncompressedKeySize:
		return ecdh.P256().NewPublicKey(b)
	case P256CompressedPubKeySize:
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), b)
		if x == nil {
			return nil, errors.New("invalid compressed p256 public key")
		}
		return ecdh.P256().NewPublicKey(elliptic.Marshal(elliptic.P256(), x, y))
	default:
		return nil, fmt.Errorf("invalid p256 public key length %d", len(b))
	}
}

// P256SharedSecret() takes a local P-256 private key and the peer's public key and returns the X coordinate of the
// Diffie-Hellman point with leading zero bytes stripped, meaning both peers compute exact pseudorandom bytes
// without transmitting the secret over the wire
func P256SharedSecret(private *ecdh.PrivateKey, peerPublicKey []byte) ([]byte, error) {
	peer, err := BytesToP256Public(peerPublicKey)
	if err != nil {
		return nil, err
	}
	secret, err := private.ECDH(peer)
	if err != nil {
		return nil, err
	}
	// ensure the secret isn't an 'all-zero' byte array as this would be a weak or invalid key agreement
	if subtle.ConstantTimeCompare(secret, make([]byte, len(secret))) == 1 {
		return nil, fmt.Errorf("all zero shared secret")
	}
	// the X coordinate is used as a big endian integer so leading zeros are dropped
	return bytes.TrimLeft(secret, "\x00"), nil
}
