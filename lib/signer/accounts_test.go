package signer

import (
	"context"
	"testing"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

const hardhatMnemonic = "test test test test test test test test test test test junk"

func TestParsePath(t *testing.T) {
	h := uint32(hdkeychain.HardenedKeyStart)
	tests := []struct {
		name     string
		detail   string
		path     string
		expected []uint32
		error    bool
	}{
		{
			name:     "ethereum",
			detail:   "the default ethereum path",
			path:     DefaultETHPath,
			expected: []uint32{44 + h, 60 + h, h, 0, 0},
		},
		{
			name:     "h suffix",
			detail:   "h marks a hardened index too",
			path:     "m/44h/118h/0h/0/7",
			expected: []uint32{44 + h, 118 + h, h, 0, 7},
		},
		{
			name:   "master",
			detail: "an empty path is the master key",
			path:   "",
		},
		{
			name:   "no root",
			detail: "the path must start at m",
			path:   "44'/60'",
			error:  true,
		},
		{
			name:   "bad index",
			detail: "indexes are decimal",
			path:   "m/x",
			error:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := ParsePath(test.path)
			require.Equal(t, test.error, err != nil, err)
			require.Equal(t, test.expected, got)
		})
	}
}

func TestImportETHMnemonic(t *testing.T) {
	acc, err := ImportAccount(lib.ChainETH, ImportOptions{Mnemonics: hardhatMnemonic, Name: "dev"})
	require.NoError(t, err)
	// the first hardhat account
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", acc.Address)
	require.Equal(t, "dev", acc.Name)
	require.Equal(t, DefaultETHPath, acc.Get(ExtraPath))
	require.Equal(t, SourceIntegrated, acc.Get(ExtraSource))
	// a different path is a different account
	other, err := ImportAccount(lib.ChainETH, ImportOptions{Mnemonics: hardhatMnemonic, Path: "m/44'/60'/0'/0/1"})
	require.NoError(t, err)
	require.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", other.Address)
}

func TestImportDeterministic(t *testing.T) {
	for _, chain := range []lib.ChainType{lib.ChainNULS2, lib.ChainCSDK, lib.ChainDOT} {
		t.Run(chain.String(), func(t *testing.T) {
			a, err := ImportAccount(chain, ImportOptions{Mnemonics: hardhatMnemonic})
			require.NoError(t, err)
			b, err := ImportAccount(chain, ImportOptions{Mnemonics: hardhatMnemonic})
			require.NoError(t, err)
			// the same mnemonic always yields the same account
			require.Equal(t, a.Address, b.Address)
			require.Equal(t, a.PublicKey, b.PublicKey)
			require.Equal(t, hardhatMnemonic, a.Mnemonics)
		})
	}
}

func TestImportFromPrivateKey(t *testing.T) {
	// every chain that imports from its own exported key yields the same address
	for _, chain := range lib.KnownChains {
		t.Run(chain.String(), func(t *testing.T) {
			fresh, err := NewAccount(chain)
			require.NoError(t, err)
			pk, ok := fresh.PrivateKey()
			require.True(t, ok)
			encoded := lib.BytesToString(pk)
			if chain == lib.ChainSOL {
				encoded = base58.Encode(pk)
			}
			// execute the function call
			imported, e := ImportAccount(chain, ImportOptions{PrivateKey: encoded})
			require.NoError(t, e)
			require.Equal(t, fresh.Address, imported.Address)
		})
	}
}

func TestImportNULS2PaddedKey(t *testing.T) {
	acc, err := ImportAccount(lib.ChainNULS2, ImportOptions{PrivateKey: "00" + ethTestKey})
	require.NoError(t, err)
	plain, err := ImportAccount(lib.ChainNULS2, ImportOptions{PrivateKey: ethTestKey})
	require.NoError(t, err)
	// a 66 character key with a leading 00 is trimmed
	require.Equal(t, plain.Address, acc.Address)
}

func TestImportCosmosPrefix(t *testing.T) {
	acc, err := ImportAccount(lib.ChainCSDK, ImportOptions{PrivateKey: ethTestKey, Prefix: "osmo"})
	require.NoError(t, err)
	require.Regexp(t, "^osmo1", acc.Address)
	require.Equal(t, "osmo", acc.Get(ExtraPrefix))
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		chain  lib.ChainType
		opts   ImportOptions
		module lib.ErrorModule
		code   lib.ErrorCode
	}{
		{
			name:   "unsupported chain",
			detail: "no constructor for XRP",
			chain:  "XRP",
			opts:   ImportOptions{PrivateKey: ethTestKey},
			module: lib.SignerModule,
			code:   lib.CodeUnsupportedChain,
		},
		{
			name:   "invalid mnemonic",
			detail: "an unknown word",
			chain:  lib.ChainETH,
			opts:   ImportOptions{Mnemonics: "test test test test test test test test test test test notaword"},
			module: lib.SignerModule,
			code:   lib.CodeInvalidMnemonic,
		},
		{
			name:   "invalid dot mnemonic",
			detail: "the bip39 checksum fails",
			chain:  lib.ChainDOT,
			opts:   ImportOptions{Mnemonics: "not a mnemonic"},
			module: lib.SignerModule,
			code:   lib.CodeInvalidMnemonic,
		},
		{
			name:   "short nuls key",
			detail: "nuls keys are 64 hex characters",
			chain:  lib.ChainNULS2,
			opts:   ImportOptions{PrivateKey: "abcd"},
			module: lib.AddressModule,
			code:   lib.CodeInvalidPrivateKey,
		},
		{
			name:   "sol key",
			detail: "solana keys are base58 64 byte secrets",
			chain:  lib.ChainSOL,
			opts:   ImportOptions{PrivateKey: "abcd"},
			module: lib.AddressModule,
			code:   lib.CodeInvalidPrivateKey,
		},
		{
			name:   "nothing",
			detail: "either a key or a mnemonic is needed",
			chain:  lib.ChainETH,
			module: lib.MainModule,
			code:   lib.CodeInvalidArgument,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			_, err := ImportAccount(test.chain, test.opts)
			require.True(t, lib.IsError(err, test.module, test.code), err)
		})
	}
}

func TestCosmosFromExternalSigner(t *testing.T) {
	handle := lib.SignerFunc(func(context.Context, *lib.Account, []byte) (string, error) { return "{}", nil })
	acc := CosmosFromExternalSigner("osmo1qqqq", "ledger", []byte{2}, handle)
	require.Equal(t, lib.ChainCSDK, acc.Chain)
	require.Equal(t, "ledger", acc.Name)
	require.Equal(t, "osmo", acc.Get(ExtraPrefix))
	require.Equal(t, SourceExternal, acc.Get(ExtraSource))
	_, ok := acc.PrivateKey()
	require.False(t, ok)
}

func TestUnlock(t *testing.T) {
	dotFormat := uint8(0)
	tests := []struct {
		name   string
		detail string
		chain  lib.ChainType
		opts   ImportOptions
		secret func(acc *lib.Account) string
		error  bool
	}{
		{
			name:   "exported key",
			detail: "the stored public description plus the exported key unlocks the account",
			chain:  lib.ChainSOL,
		},
		{
			name:   "mnemonic with custom path",
			detail: "the recorded derivation path is reused",
			chain:  lib.ChainETH,
			opts:   ImportOptions{Mnemonics: hardhatMnemonic, Path: "m/44'/60'/0'/0/1"},
			secret: func(*lib.Account) string { return "  " + hardhatMnemonic + "\n" },
		},
		{
			name:   "ss58 format",
			detail: "the recorded format is reused",
			chain:  lib.ChainDOT,
			opts:   ImportOptions{Mnemonics: hardhatMnemonic, Format: &dotFormat},
			secret: func(*lib.Account) string { return hardhatMnemonic },
		},
		{
			name:   "cosmos prefix",
			detail: "the recorded bech32 prefix is reused",
			chain:  lib.ChainCSDK,
			opts:   ImportOptions{PrivateKey: ethTestKey, Prefix: "osmo"},
			secret: func(*lib.Account) string { return ethTestKey },
		},
		{
			name:   "wrong key",
			detail: "a different key resolves to another address",
			chain:  lib.ChainAVAX,
			secret: func(*lib.Account) string { return ethTestKey },
			error:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var (
				acc *lib.Account
				err lib.ErrorI
			)
			if test.opts.PrivateKey == "" && test.opts.Mnemonics == "" {
				acc, err = NewAccount(test.chain)
			} else {
				acc, err = ImportAccount(test.chain, test.opts)
			}
			require.NoError(t, err)
			secret := ""
			if test.secret != nil {
				secret = test.secret(acc)
			} else {
				secret, err = ExportPrivateKey(acc)
				require.NoError(t, err)
			}
			// only the public description survives
			public := lib.NewAccount(acc.Chain, acc.Address, acc.PublicKey, nil)
			public.Extra = acc.Extra
			// execute the function call
			unlocked, e := Unlock(public, secret)
			require.Equal(t, test.error, e != nil, e)
			if !test.error {
				require.Equal(t, acc.Address, unlocked.Address)
				_, ok := unlocked.PrivateKey()
				require.True(t, ok)
			}
		})
	}
}

func TestExportPrivateKeyExternal(t *testing.T) {
	acc := FromExternalSigner(lib.ChainETH, "0xabc", nil, nil)
	_, err := ExportPrivateKey(acc)
	require.True(t, lib.IsError(err, lib.MainModule, lib.CodeExternalSignerOnly))
}
