package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethCrypto "github.com/ethereum/go-ethereum/crypto"
)

/* This file implements logic for SECP256K1 when the public key is not compressed (64 bytes) and messages are signed with the EIP-191 'personal_sign' scheme */

const (
	ETHSECP256K1PubKeySize = 64 // represents the uncompressed SECP256K1 public key size
	ETHRecoveryOffset      = 27 // added to the recovery id of a personal_sign signature
)

// ensure ETHSECP256K1PublicKey conforms to the PublicKeyI interface
var _ PublicKeyI = &ETHSECP256K1PublicKey{}
var _ PrivateKeyI = &ETHSECP256K1PrivateKey{}

type ETHSECP256K1PrivateKey struct {
	SECP256K1PrivateKey
}

// NewETHSECP256K1PrivateKey() generates a new ETHSECP256K1 private key
func NewETHSECP256K1PrivateKey() (*ETHSECP256K1PrivateKey, error) {
	pk, err := NewSECP256K1PrivateKey()
	if err != nil {
		return nil, err
	}
	return &ETHSECP256K1PrivateKey{*pk}, nil
}

// BytesToEthSECP256K1Private() converts bytes to SECP256K1 private key using go-ethereum
func BytesToEthSECP256K1Private(b []byte) (*ETHSECP256K1PrivateKey, error) {
	pk, err := ethCrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &ETHSECP256K1PrivateKey{SECP256K1PrivateKey{PrivateKey: pk}}, nil
}

// Sign() returns the 65 byte personal_sign signature r || s || v with v in {27, 28}
func (s *ETHSECP256K1PrivateKey) Sign(msg []byte) []byte {
	sig, _ := ethCrypto.Sign(accounts.TextHash(msg), s.PrivateKey)
	sig[recoveryIndex] += ETHRecoveryOffset
	return sig
}

// PublicKey() returns the ethereum public pair to this private key
func (s *ETHSECP256K1PrivateKey) PublicKey() PublicKeyI { return s.ETHPublicKey() }

// ETHPublicKey() returns the concrete ethereum public pair to this private key
func (s *ETHSECP256K1PrivateKey) ETHPublicKey() *ETHSECP256K1PublicKey {
	return &ETHSECP256K1PublicKey{PublicKey: &s.PrivateKey.PublicKey}
}

// ETHSECP256K1PublicKey is the ethereum variant of the public key, it is addressed by the last 20 bytes of its keccak hash
type ETHSECP256K1PublicKey struct {
	*ecdsa.PublicKey
}

// BytesToEthSECP256K1Public() returns ETHSECP256K1PublicKey from 64, 65 or 33 bytes
func BytesToEthSECP256K1Public(b []byte) (*ETHSECP256K1PublicKey, error) {
	if len(b) == ETHSECP256K1PubKeySize {
		b = append([]byte{0x04}, b...) // add the SEC1 prefix
	}
	pub, err := BytesToSECP256K1Public(b)
	if err != nil {
		return nil, err
	}
	return &ETHSECP256K1PublicKey{PublicKey: pub.PublicKey}, nil
}

// Bytes() returns the 64 byte representation of the Public Key
func (s *ETHSECP256K1PublicKey) Bytes() []byte { return s.BytesWithPrefix()[1:] }

// BytesWithPrefix() returns the 65 byte SEC1 representation of the Public Key
func (s *ETHSECP256K1PublicKey) BytesWithPrefix() []byte { return ethCrypto.FromECDSAPub(s.PublicKey) }

// Compressed() returns the 33 byte representation of the Public Key
func (s *ETHSECP256K1PublicKey) Compressed() []byte { return ethCrypto.CompressPubkey(s.PublicKey) }

// MarshalJSON() is the json.Marshaller implementation for ETHSECP256K1PublicKey
func (s *ETHSECP256K1PublicKey) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// Address() returns the EIP-55 checksummed address
func (s *ETHSECP256K1PublicKey) Address() string {
	return ethCrypto.PubkeyToAddress(*s.PublicKey).Hex()
}

// VerifyBytes() returns true if sig is a personal_sign signature of msg by this public key
func (s *ETHSECP256K1PublicKey) VerifyBytes(msg []byte, sig []byte) (valid bool) {
	cached, addToCache := CheckCache(s, msg, sig)
	if cached {
		return true
	}
	signer, err := RecoverPersonalSign(msg, sig)
	if err != nil {
		return false
	}
	if valid = signer == ethCrypto.PubkeyToAddress(*s.PublicKey); valid {
		addToCache()
	}
	return
}

// String() returns the hex string representation of the public key
func (s *ETHSECP256K1PublicKey) String() string { return hex.EncodeToString(s.Bytes()) }

// Equals() compares two ETHSECP256K1PublicKey objects and returns true if they're equal
func (s *ETHSECP256K1PublicKey) Equals(i PublicKeyI) bool { return bytes.Equal(s.Bytes(), i.Bytes()) }

// RecoverPersonalSign() recovers the address that produced a personal_sign signature
// v may be 0, 1, 27 or 28
func RecoverPersonalSign(msg, sig []byte) (common.Address, error) {
	if len(sig) != SECP256K1RecoverableSigSize {
		return common.Address{}, errors.New("invalid signature length")
	}
	// normalize v to 0 or 1 without touching the caller's slice
	normalized := make([]byte, SECP256K1RecoverableSigSize)
	copy(normalized, sig)
	if normalized[recoveryIndex] >= ETHRecoveryOffset {
		normalized[recoveryIndex] -= ETHRecoveryOffset
	}
	if normalized[recoveryIndex] > 1 {
		return common.Address{}, errors.New("invalid recovery id")
	}
	pub, err := ethCrypto.SigToPub(accounts.TextHash(msg), normalized)
	if err != nil {
		return common.Address{}, err
	}
	return ethCrypto.PubkeyToAddress(*pub), nil
}

// recoveryIndex is the index of the recovery byte
const recoveryIndex = SECP256K1SignatureSize
