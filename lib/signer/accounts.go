package signer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/aleph-im/aleph-go/lib/nuls"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

/* This file implements the per chain account constructors: fresh accounts, imports from a private key or a mnemonic */

const (
	DefaultETHPath      = "m/44'/60'/0'/0/0"
	DefaultCosmosPath   = "m/44'/118'/0'/0/0"
	DefaultCosmosPrefix = "cosmos"
	mnemonicEntropyBits = 128

	// account Extra keys
	ExtraPath   = "path"
	ExtraPrefix = "prefix"
	ExtraFormat = "format"
	ExtraSource = "source"

	SourceIntegrated = "integrated"
	SourceExternal   = "external"
)

// ImportOptions selects the key material of an imported account, PrivateKey wins over Mnemonics
type ImportOptions struct {
	PrivateKey string // hex for secp256k1 chains and DOT, base58 for SOL
	Mnemonics  string
	Path       string // BIP32 path for ETH and CSDK
	Prefix     string // bech32 prefix for CSDK, address prefix for NULS2
	Format     *uint8 // ss58 format for DOT
	Name       string
}

// NewAccount() creates a fresh account; chains with a mnemonic flow return the mnemonic in Account.Mnemonics
func NewAccount(chain lib.ChainType) (*lib.Account, lib.ErrorI) {
	switch chain {
	case lib.ChainNULS, lib.ChainSOL, lib.ChainAVAX:
		return newRandomAccount(chain)
	case lib.ChainNULS2, lib.ChainETH, lib.ChainCSDK, lib.ChainDOT:
		mnemonic, err := NewMnemonic()
		if err != nil {
			return nil, err
		}
		return ImportAccount(chain, ImportOptions{Mnemonics: mnemonic})
	default:
		return nil, ErrUnsupportedChain(chain)
	}
}

// ImportAccount() rebuilds an account from a private key or a mnemonic
func ImportAccount(chain lib.ChainType, o ImportOptions) (acc *lib.Account, err lib.ErrorI) {
	switch chain {
	case lib.ChainNULS2:
		acc, err = importNULS(o, nuls.NULS2Params)
	case lib.ChainNULS:
		acc, err = importNULS(o, nuls.LegacyParams)
	case lib.ChainETH:
		acc, err = importETH(o)
	case lib.ChainCSDK:
		acc, err = importCosmos(o)
	case lib.ChainDOT:
		acc, err = importDOT(o)
	case lib.ChainSOL:
		acc, err = importSOL(o)
	case lib.ChainAVAX:
		acc, err = importAVAX(o)
	default:
		return nil, ErrUnsupportedChain(chain)
	}
	if err != nil {
		return nil, err
	}
	return acc.WithName(o.Name), nil
}

// FromExternalSigner() creates an account whose signatures come from a wallet provider or device
func FromExternalSigner(chain lib.ChainType, address string, publicKey []byte, handle lib.SignerHandle) *lib.Account {
	acc := lib.NewAccount(chain, address, publicKey, lib.ExternalSigner{Handle: handle})
	acc.Set(ExtraSource, SourceExternal)
	return acc
}

// CosmosFromExternalSigner() creates a cosmos-sdk account backed by a signer that receives the canonical sign doc
func CosmosFromExternalSigner(address, name string, publicKey []byte, handle lib.SignerHandle) *lib.Account {
	acc := FromExternalSigner(lib.ChainCSDK, address, publicKey, handle).WithName(name)
	if i := strings.LastIndex(address, "1"); i > 0 {
		acc.Set(ExtraPrefix, address[:i])
	}
	return acc
}

// NewMnemonic() returns a fresh 12 word BIP39 mnemonic
func NewMnemonic() (string, lib.ErrorI) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", ErrDeriveKey(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", ErrDeriveKey(err)
	}
	return mnemonic, nil
}

// newRandomAccount() creates an account from freshly generated key material
func newRandomAccount(chain lib.ChainType) (*lib.Account, lib.ErrorI) {
	if chain == lib.ChainSOL {
		pk, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, ErrDeriveKey(err)
		}
		return importSOL(ImportOptions{PrivateKey: pk.String()})
	}
	pk, err := crypto.NewSECP256K1PrivateKey()
	if err != nil {
		return nil, ErrDeriveKey(err)
	}
	return ImportAccount(chain, ImportOptions{PrivateKey: pk.String()})
}

// importNULS() builds a NULS family account, a mnemonic maps to the BIP32 master key
func importNULS(o ImportOptions, p nuls.AddressParams) (*lib.Account, lib.ErrorI) {
	if o.Prefix != "" && p.Prefix != "" {
		p.Prefix = o.Prefix
	}
	var pk []byte
	switch {
	case o.PrivateKey != "":
		key, ok := nuls.CheckPrivateKey(strings.TrimPrefix(o.PrivateKey, "0x"))
		if !ok {
			return nil, lib.ErrInvalidPrivateKey(fmt.Errorf("not a secp256k1 scalar"))
		}
		pk, _ = hex.DecodeString(key)
	case o.Mnemonics != "":
		var err lib.ErrorI
		if pk, err = deriveSECP256K1(o.Mnemonics, ""); err != nil {
			return nil, err
		}
	default:
		return nil, lib.ErrInvalidArgument(fmt.Errorf("a private key or a mnemonic is required"))
	}
	pub, err := nuls.PrivateKeyToPublicKey(pk)
	if err != nil {
		return nil, err
	}
	chain := lib.ChainNULS2
	if p == nuls.LegacyParams {
		chain = lib.ChainNULS
	}
	acc := lib.NewAccount(chain, p.Address(pub), pub, lib.LocalKey{PrivateKey: pk})
	acc.Mnemonics = o.Mnemonics
	if p.Prefix != "" {
		acc.Set(ExtraPrefix, p.Prefix)
	}
	return acc, nil
}

// importETH() builds an ethereum account, the address is EIP-55 checksummed and the public key compressed
func importETH(o ImportOptions) (*lib.Account, lib.ErrorI) {
	path := defaultString(o.Path, DefaultETHPath)
	pk, err := secp256k1Material(o, path)
	if err != nil {
		return nil, err
	}
	priv, er := crypto.BytesToEthSECP256K1Private(pk)
	if er != nil {
		return nil, lib.ErrInvalidPrivateKey(er)
	}
	pub := priv.ETHPublicKey()
	acc := lib.NewAccount(lib.ChainETH, pub.Address(), pub.Compressed(), lib.LocalKey{PrivateKey: pk})
	acc.Mnemonics = o.Mnemonics
	acc.Set(ExtraSource, SourceIntegrated)
	if o.Mnemonics != "" {
		acc.Set(ExtraPath, path)
	}
	return acc, nil
}

// importCosmos() builds a cosmos-sdk account addressed by bech32(prefix, Hash160(pub))
func importCosmos(o ImportOptions) (*lib.Account, lib.ErrorI) {
	path, prefix := defaultString(o.Path, DefaultCosmosPath), defaultString(o.Prefix, DefaultCosmosPrefix)
	pk, err := secp256k1Material(o, path)
	if err != nil {
		return nil, err
	}
	priv, er := crypto.BytesToSECP256K1Private(pk)
	if er != nil {
		return nil, lib.ErrInvalidPrivateKey(er)
	}
	pub := priv.SECP256K1PublicKey().Bytes()
	address, err := Bech32Address(prefix, pub)
	if err != nil {
		return nil, err
	}
	acc := lib.NewAccount(lib.ChainCSDK, address, pub, lib.LocalKey{PrivateKey: pk})
	acc.Mnemonics = o.Mnemonics
	acc.Set(ExtraPrefix, prefix)
	if o.Mnemonics != "" {
		acc.Set(ExtraPath, path)
	}
	return acc, nil
}

// importDOT() builds a substrate account from the sr25519 mini secret
func importDOT(o ImportOptions) (*lib.Account, lib.ErrorI) {
	format := uint8(DefaultSS58Format)
	if o.Format != nil {
		format = *o.Format
	}
	var (
		mini *schnorrkel.MiniSecretKey
		err  error
	)
	switch {
	case o.PrivateKey != "":
		raw, e := lib.StringToBytes(o.PrivateKey)
		if e != nil {
			return nil, lib.ErrInvalidPrivateKey(e)
		}
		mini, err = miniSecret(raw)
	case o.Mnemonics != "":
		if !bip39.IsMnemonicValid(o.Mnemonics) {
			return nil, ErrInvalidMnemonic()
		}
		mini, err = schnorrkel.MiniSecretKeyFromMnemonic(o.Mnemonics, "")
	default:
		return nil, lib.ErrInvalidArgument(fmt.Errorf("a private key or a mnemonic is required"))
	}
	if err != nil {
		return nil, ErrDeriveKey(err)
	}
	pubArr, secret := mini.Public().Encode(), mini.Encode()
	address, e := SS58Encode(pubArr[:], format)
	if e != nil {
		return nil, e
	}
	acc := lib.NewAccount(lib.ChainDOT, address, pubArr[:], lib.LocalKey{PrivateKey: secret[:]})
	acc.Mnemonics = o.Mnemonics
	acc.Set(ExtraFormat, strconv.Itoa(int(format)))
	return acc, nil
}

// importSOL() builds a solana account from a base58 64 byte secret key
func importSOL(o ImportOptions) (*lib.Account, lib.ErrorI) {
	if o.PrivateKey == "" {
		return nil, lib.ErrInvalidArgument(fmt.Errorf("a base58 private key is required"))
	}
	pk, err := solana.PrivateKeyFromBase58(o.PrivateKey)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	pub := pk.PublicKey()
	return lib.NewAccount(lib.ChainSOL, pub.String(), pub.Bytes(), lib.LocalKey{PrivateKey: pk}), nil
}

// importAVAX() builds an avalanche X-chain account from a hex private key
func importAVAX(o ImportOptions) (*lib.Account, lib.ErrorI) {
	if o.PrivateKey == "" {
		return nil, lib.ErrInvalidArgument(fmt.Errorf("a hex private key is required"))
	}
	pk, e := lib.StringToBytes(o.PrivateKey)
	if e != nil {
		return nil, lib.ErrInvalidPrivateKey(e)
	}
	priv, err := crypto.BytesToSECP256K1Private(pk)
	if err != nil {
		return nil, lib.ErrInvalidPrivateKey(err)
	}
	pub := priv.SECP256K1PublicKey().Bytes()
	address, e := AVAXAddress(pub)
	if e != nil {
		return nil, e
	}
	return lib.NewAccount(lib.ChainAVAX, address, pub, lib.LocalKey{PrivateKey: pk}), nil
}

// secp256k1Material() returns the private key bytes from the hex key or from the mnemonic at path
func secp256k1Material(o ImportOptions, path string) ([]byte, lib.ErrorI) {
	switch {
	case o.PrivateKey != "":
		pk, err := lib.StringToBytes(o.PrivateKey)
		if err != nil {
			return nil, lib.ErrInvalidPrivateKey(err)
		}
		return pk, nil
	case o.Mnemonics != "":
		return deriveSECP256K1(o.Mnemonics, path)
	default:
		return nil, lib.ErrInvalidArgument(fmt.Errorf("a private key or a mnemonic is required"))
	}
}

// deriveSECP256K1() walks the BIP32 path from the mnemonic's seed, an empty path returns the master key
func deriveSECP256K1(mnemonic, path string) ([]byte, lib.ErrorI) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, ErrInvalidMnemonic()
	}
	indexes, e := ParsePath(path)
	if e != nil {
		return nil, e
	}
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, ErrDeriveKey(err)
	}
	for _, i := range indexes {
		if key, err = key.Derive(i); err != nil {
			return nil, ErrDeriveKey(err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, ErrDeriveKey(err)
	}
	return priv.Serialize(), nil
}

// ParsePath() converts "m/44'/60'/0'/0/0" into child indexes, a trailing ' or h marks a hardened index
func ParsePath(path string) ([]uint32, lib.ErrorI) {
	if path == "" || path == "m" {
		return nil, nil
	}
	parts := strings.Split(path, "/")
	if parts[0] != "m" {
		return nil, lib.ErrInvalidArgument(fmt.Errorf("derivation path %q must start with m", path))
	}
	indexes := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		n, err := strconv.ParseUint(strings.TrimRight(part, "'h"), 10, 31)
		if err != nil {
			return nil, lib.ErrInvalidArgument(fmt.Errorf("derivation path %q: %s", path, err.Error()))
		}
		i := uint32(n)
		if hardened {
			i += hdkeychain.HardenedKeyStart
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}

// ExportPrivateKey() encodes the local key the way ImportAccount reads it back: base58 for SOL, hex otherwise
func ExportPrivateKey(acc *lib.Account) (string, lib.ErrorI) {
	pk, ok := acc.PrivateKey()
	if !ok {
		return "", lib.ErrExternalSignerOnly()
	}
	if acc.Chain == lib.ChainSOL {
		return solana.PrivateKey(pk).String(), nil
	}
	return lib.BytesToString(pk), nil
}

// RestoreOptions() rebuilds the import options recorded in the account's Extra, secret is a private key or a mnemonic
func RestoreOptions(acc *lib.Account, secret string) (ImportOptions, lib.ErrorI) {
	o := ImportOptions{Path: acc.Get(ExtraPath), Prefix: acc.Get(ExtraPrefix), Name: acc.Name}
	if f := acc.Get(ExtraFormat); f != "" {
		n, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return o, lib.ErrInvalidArgument(fmt.Errorf("ss58 format %q: %s", f, err.Error()))
		}
		format := uint8(n)
		o.Format = &format
	}
	if strings.Contains(strings.TrimSpace(secret), " ") {
		o.Mnemonics = strings.Join(strings.Fields(secret), " ")
	} else {
		o.PrivateKey = strings.TrimSpace(secret)
	}
	return o, nil
}

// Unlock() rebuilds acc from secret and checks it resolves to the same address
func Unlock(acc *lib.Account, secret string) (*lib.Account, lib.ErrorI) {
	o, err := RestoreOptions(acc, secret)
	if err != nil {
		return nil, err
	}
	unlocked, err := ImportAccount(acc.Chain, o)
	if err != nil {
		return nil, err
	}
	if unlocked.Address != acc.Address {
		return nil, ErrMismatchedSignerID(acc.Address, unlocked.Address)
	}
	return unlocked, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
