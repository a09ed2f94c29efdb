package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/secp256k1"
)

/* This file implements logic for SECP256K1 when the public key is compressed (33 bytes), used by the NULS, cosmos and avalanche families */

const (
	SECP256K1PrivKeySize         = 32
	SECP256K1PubKeySize          = 33
	SECP256K1SignatureSize       = 64
	SECP256K1RecoverableSigSize  = 65
	SECP256K1UncompressedKeySize = 65
)

// Private Key Below

// ensure SECP256K1PrivateKey conforms to the PrivateKeyI interface
var _ PrivateKeyI = &SECP256K1PrivateKey{}

// NewSECP256K1PrivateKey() generates a new SECP256K1 private key
func NewSECP256K1PrivateKey() (*SECP256K1PrivateKey, error) {
	pk, err := ecdsa.GenerateKey(secp256k1.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &SECP256K1PrivateKey{PrivateKey: pk}, nil
}

// BytesToSECP256K1Private() converts bytes to SECP256K1 private key using go-ethereum
// the scalar must be 32 bytes and within the curve order
func BytesToSECP256K1Private(b []byte) (*SECP256K1PrivateKey, error) {
	pk, err := ethCrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &SECP256K1PrivateKey{PrivateKey: pk}, nil
}

// StringToSECP256K1Private() creates a new private key from an SECP256K1 hex string
func StringToSECP256K1Private(hexString string) (*SECP256K1PrivateKey, error) {
	bz, err := hex.DecodeString(hexString)
	if err != nil {
		return nil, err
	}
	return BytesToSECP256K1Private(bz)
}

// SECP256K1PrivateKey is the private key of a cryptographic key pair used in elliptic curve signing and verification, based on the SECP256K1 elliptic curve
type SECP256K1PrivateKey struct {
	*ecdsa.PrivateKey
}

// Sign() returns the 64 byte r || s signature of SHA-256(msg)
func (s *SECP256K1PrivateKey) Sign(msg []byte) []byte {
	sig, _ := ethCrypto.Sign(Hash(msg), s.PrivateKey)
	// a 1-byte value used to indicate the 'recovery byte' is omitted
	return sig[:len(sig)-1]
}

// SignDigest() returns the 65 byte r || s || v signature of a prehashed 32 byte digest, v is 0 or 1
func (s *SECP256K1PrivateKey) SignDigest(digest []byte) ([]byte, error) {
	return ethCrypto.Sign(digest, s.PrivateKey)
}

// PublicKey() returns the public pair to this private key
func (s *SECP256K1PrivateKey) PublicKey() PublicKeyI { return s.SECP256K1PublicKey() }

// SECP256K1PublicKey() returns the concrete public pair to this private key
func (s *SECP256K1PrivateKey) SECP256K1PublicKey() *SECP256K1PublicKey {
	return &SECP256K1PublicKey{PublicKey: &s.PrivateKey.PublicKey}
}

// Bytes() returns the byte representation of the private key
func (s *SECP256K1PrivateKey) Bytes() []byte { return ethCrypto.FromECDSA(s.PrivateKey) }

// String() returns the hex string representation of the private key
func (s *SECP256K1PrivateKey) String() string { return hex.EncodeToString(s.Bytes()) }

// Equals() compares to private keys and returns true if they are equal
func (s *SECP256K1PrivateKey) Equals(i PrivateKeyI) bool { return bytes.Equal(s.Bytes(), i.Bytes()) }

// Public Key Below

// ensure SECP256K1PublicKey conforms to the PublicKeyI interface
var _ PublicKeyI = &SECP256K1PublicKey{}

// SECP256K1PublicKey is the public key of a cryptographic key pair used in elliptic curve signing and verification, based on the SECP256K1 elliptic curve
type SECP256K1PublicKey struct {
	compressed []byte
	*ecdsa.PublicKey
}

// BytesToSECP256K1Public() returns SECP256K1PublicKey from 33 byte compressed or 65 byte uncompressed bytes
func BytesToSECP256K1Public(b []byte) (*SECP256K1PublicKey, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	switch len(b) {
	case SECP256K1PubKeySize:
		pub, err = ethCrypto.DecompressPubkey(b)
	case SECP256K1UncompressedKeySize:
		pub, err = ethCrypto.UnmarshalPubkey(b)
	default:
		err = errors.New("invalid secp256k1 public key length")
	}
	if err != nil {
		return nil, err
	}
	return &SECP256K1PublicKey{PublicKey: pub}, nil
}

// RecoverSECP256K1Public() recovers the signer of a prehashed digest from a 65 byte r || s || v signature
func RecoverSECP256K1Public(digest, sig []byte) (*SECP256K1PublicKey, error) {
	if len(sig) != SECP256K1RecoverableSigSize {
		return nil, errors.New("invalid recoverable signature length")
	}
	pub, err := ethCrypto.SigToPub(digest, sig)
	if err != nil {
		return nil, err
	}
	return &SECP256K1PublicKey{PublicKey: pub}, nil
}

// MarshalJSON() is the json.Marshaller implementation for SECP256K1PublicKey
func (s *SECP256K1PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// VerifyBytes() returns true if sig is a valid r || s signature of SHA-256(msg) for this public key
func (s *SECP256K1PublicKey) VerifyBytes(msg []byte, sig []byte) (valid bool) {
	return s.VerifyDigest(Hash(msg), sig)
}

// VerifyDigest() returns true if sig is a valid r || s signature of the prehashed digest for this public key
func (s *SECP256K1PublicKey) VerifyDigest(digest []byte, sig []byte) (valid bool) {
	if len(sig) == SECP256K1RecoverableSigSize {
		sig = sig[:SECP256K1SignatureSize]
	}
	cached, addToCache := CheckCache(s, digest, sig)
	if cached {
		return true
	}
	if valid = ethCrypto.VerifySignature(s.Bytes(), digest, sig); valid {
		addToCache()
	}
	return
}

// Bytes() returns the 33 byte compressed representation of the Public Key
func (s *SECP256K1PublicKey) Bytes() []byte {
	if s.compressed == nil {
		s.compressed = ethCrypto.CompressPubkey(s.PublicKey)
	}
	return s.compressed
}

// Uncompressed() returns the 65 byte SEC1 representation of the Public Key
func (s *SECP256K1PublicKey) Uncompressed() []byte { return ethCrypto.FromECDSAPub(s.PublicKey) }

// Hash160() returns RIPEMD-160(SHA-256(compressed public key))
func (s *SECP256K1PublicKey) Hash160() []byte { return Hash160(s.Bytes()) }

// String() returns the hex string representation of the public key
func (s *SECP256K1PublicKey) String() string { return hex.EncodeToString(s.Bytes()) }

// Equals() compares two SECP256K1PublicKey objects and returns true if they're equal
func (s *SECP256K1PublicKey) Equals(i PublicKeyI) bool { return bytes.Equal(s.Bytes(), i.Bytes()) }
