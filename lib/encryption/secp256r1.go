package encryption

import (
	"crypto/ecdh"
	"crypto/rand"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
)

/*
	secp256r1 envelope layout:
	ephemeral public key (65, uncompressed) || iv (16) || mac (32) || AES-256-CBC ciphertext
	mac = HMAC-SHA256(macKey, iv || ephemeral public key || ciphertext)
	encKey || macKey = SHA-512(ECDH x coordinate without leading zeros)
*/

const (
	r1PubOffset = crypto.P256UncompressedKeySize
	r1IVOffset  = r1PubOffset + crypto.CBCIVSize
	r1MACOffset = r1IVOffset + crypto.MACSize
	r1MinSize   = r1MACOffset + crypto.CBCIVSize // at least one cipher block
)

// R1Options pins the otherwise random ephemeral key and iv
type R1Options struct {
	EphemeralKey []byte // 32 byte P-256 scalar
	IV           []byte // 16 bytes
}

// SECP256R1Envelope is an ECIES style construction over P-256
type SECP256R1Envelope struct {
	Options R1Options
}

var _ Envelope = SECP256R1Envelope{}

// Curve() returns secp256r1
func (SECP256R1Envelope) Curve() Curve { return CurveSECP256R1 }

// Encrypt() seals plaintext for a 65 or 33 byte P-256 public key
func (e SECP256R1Envelope) Encrypt(targetKey, plaintext []byte) ([]byte, error) {
	ephemeral, err := e.ephemeralKey()
	if err != nil {
		return nil, ErrEncrypt(err)
	}
	shared, err := crypto.P256SharedSecret(ephemeral, targetKey)
	if err != nil {
		return nil, ErrInvalidRecipientKey(err)
	}
	encKey, macKey := crypto.DeriveCBCKeys(shared)
	iv := e.Options.IV
	if iv == nil {
		iv = make([]byte, crypto.CBCIVSize)
		if _, err = rand.Read(iv); err != nil {
			return nil, ErrEncrypt(err)
		}
	}
	ciphertext, err := crypto.AESCBCEncrypt(encKey, iv, plaintext)
	if err != nil {
		return nil, ErrEncrypt(err)
	}
	ephemeralPub := ephemeral.PublicKey().Bytes()
	mac := crypto.HMACSHA256(macKey, iv, ephemeralPub, ciphertext)
	// encapsulate
	out := make([]byte, 0, r1MACOffset+len(ciphertext))
	out = append(out, ephemeralPub...)
	out = append(out, iv...)
	out = append(out, mac...)
	return append(out, ciphertext...), nil
}

// Decrypt() authenticates the envelope before any symmetric decryption
func (SECP256R1Envelope) Decrypt(account *lib.Account, envelope []byte) ([]byte, error) {
	key, e := localKey(account)
	if e != nil {
		return nil, e
	}
	if len(envelope) < r1MinSize {
		return nil, ErrMalformedEnvelope("secp256r1 envelope is too short")
	}
	// decapsulate
	ephemeralPub := envelope[:r1PubOffset]
	iv := envelope[r1PubOffset:r1IVOffset]
	mac := envelope[r1IVOffset:r1MACOffset]
	ciphertext := envelope[r1MACOffset:]
	private, err := crypto.BytesToP256Private(key)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	shared, err := crypto.P256SharedSecret(private, ephemeralPub)
	if err != nil {
		return nil, ErrMalformedEnvelope(err.Error())
	}
	encKey, macKey := crypto.DeriveCBCKeys(shared)
	if !crypto.MACEqual(mac, crypto.HMACSHA256(macKey, iv, ephemeralPub, ciphertext)) {
		return nil, ErrMACMismatch()
	}
	plaintext, err := crypto.AESCBCDecrypt(encKey, iv, ciphertext)
	if err != nil {
		return nil, ErrDecrypt(err)
	}
	return plaintext, nil
}

// SelfKey() returns the P-256 public key of the account's private scalar
func (SECP256R1Envelope) SelfKey(account *lib.Account) ([]byte, error) {
	key, e := localKey(account)
	if e != nil {
		return nil, e
	}
	private, err := crypto.BytesToP256Private(key)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	return private.PublicKey().Bytes(), nil
}

// ephemeralKey() returns the pinned ephemeral key or a fresh one
func (e SECP256R1Envelope) ephemeralKey() (*ecdh.PrivateKey, error) {
	if e.Options.EphemeralKey != nil {
		return crypto.BytesToP256Private(e.Options.EphemeralKey)
	}
	return crypto.NewP256PrivateKey()
}
