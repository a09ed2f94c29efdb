package lib

import (
	"context"
	"strings"
)

/* This file defines the account model shared by the signing and encryption layers */

// ChainType is the tag that selects an account's signing scheme and encryption curve
type ChainType string

const (
	ChainNULS  ChainType = "NULS"  // legacy NULS
	ChainNULS2 ChainType = "NULS2" // NULS v2
	ChainETH   ChainType = "ETH"   // ethereum compatible
	ChainDOT   ChainType = "DOT"   // substrate
	ChainCSDK  ChainType = "CSDK"  // cosmos-sdk
	ChainSOL   ChainType = "SOL"   // solana
	ChainAVAX  ChainType = "AVAX"  // avalanche
)

// KnownChains is the list of chain tags this module has a scheme for
var KnownChains = []ChainType{ChainNULS, ChainNULS2, ChainETH, ChainDOT, ChainCSDK, ChainSOL, ChainAVAX}

// NewChainType() parses a chain tag; unknown tags are kept as-is
func NewChainType(s string) ChainType { return ChainType(strings.ToUpper(strings.TrimSpace(s))) }

// String() returns the tag
func (c ChainType) String() string { return string(c) }

// IsKnown() returns true if the tag is one of KnownChains
func (c ChainType) IsKnown() bool {
	for _, k := range KnownChains {
		if k == c {
			return true
		}
	}
	return false
}

// SignerHandle is an external signer (wallet provider, hardware device, remote function)
// that produces the final signature string for a canonical buffer
type SignerHandle interface {
	Sign(ctx context.Context, account *Account, buffer []byte) (string, error)
}

// SignerFunc adapts an ordinary function to the SignerHandle interface
type SignerFunc func(ctx context.Context, account *Account, buffer []byte) (string, error)

// Sign() calls f
func (f SignerFunc) Sign(ctx context.Context, account *Account, buffer []byte) (string, error) {
	return f(ctx, account, buffer)
}

// KeyMaterial is either a LocalKey or an ExternalSigner
type KeyMaterial interface {
	isKeyMaterial()
}

// LocalKey holds raw private key bytes in the chain's native encoding
type LocalKey struct {
	PrivateKey []byte
}

// ExternalSigner holds a handle to a signer that owns the private key
type ExternalSigner struct {
	Handle SignerHandle
}

func (LocalKey) isKeyMaterial()       {}
func (ExternalSigner) isKeyMaterial() {}

// Account is a chain-specific identity able to sign messages
type Account struct {
	Chain     ChainType         `json:"type"`
	Address   string            `json:"address"`
	PublicKey HexBytes          `json:"public_key"`
	Name      string            `json:"name"`
	Mnemonics string            `json:"mnemonics,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"` // chain specific details (bech32 prefix, derivation path, ss58 format)
	Key       KeyMaterial       `json:"-"`
}

// NewAccount() creates an account, the name defaults to the address
func NewAccount(chain ChainType, address string, publicKey []byte, key KeyMaterial) *Account {
	return &Account{
		Chain:     chain,
		Address:   address,
		PublicKey: publicKey,
		Name:      address,
		Key:       key,
	}
}

// PrivateKey() returns the local private key bytes or false if the account uses an external signer
func (a *Account) PrivateKey() ([]byte, bool) {
	if a == nil {
		return nil, false
	}
	if k, ok := a.Key.(LocalKey); ok && len(k.PrivateKey) != 0 {
		return k.PrivateKey, true
	}
	return nil, false
}

// Signer() returns the external signer handle if any
func (a *Account) Signer() (SignerHandle, bool) {
	if a == nil {
		return nil, false
	}
	if k, ok := a.Key.(ExternalSigner); ok && k.Handle != nil {
		return k.Handle, true
	}
	return nil, false
}

// AttachSigner() replaces the key material with an external signer handle
func (a *Account) AttachSigner(h SignerHandle) { a.Key = ExternalSigner{Handle: h} }

// WithName() sets the display name
func (a *Account) WithName(name string) *Account {
	if name != "" {
		a.Name = name
	}
	return a
}

// Get() returns an Extra value
func (a *Account) Get(key string) string {
	if a.Extra == nil {
		return ""
	}
	return a.Extra[key]
}

// Set() stores an Extra value
func (a *Account) Set(key, value string) {
	if a.Extra == nil {
		a.Extra = make(map[string]string)
	}
	a.Extra[key] = value
}
