package cli

import (
	"path/filepath"
	"testing"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		in       string
		expected []string
	}{
		{name: "empty", detail: "no filter", in: " "},
		{name: "single", detail: "one value", in: "note", expected: []string{"note"}},
		{name: "spaces", detail: "values are trimmed and blanks dropped", in: "a, b,,c ", expected: []string{"a", "b", "c"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, split(test.in))
		})
	}
}

func TestJSONArg(t *testing.T) {
	require.Equal(t, map[string]any{"a": float64(1)}, jsonArg(`{"a":1}`))
	require.Equal(t, "hello world", jsonArg("hello world"))
}

func TestInitializeDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "aleph")
	// a fresh directory gets the default config
	c := InitializeDataDirectory(dir, lib.NewNullLogger())
	expected := lib.DefaultConfig()
	expected.DataDirPath = dir
	require.Empty(t, cmp.Diff(expected, c))
	// the account file holds no key material
	config = c
	l = lib.NewNullLogger()
	acc, err := signer.NewAccount(lib.ChainETH)
	require.NoError(t, err)
	saveAccount(acc)
	loaded := loadAccount()
	require.Equal(t, acc.Address, loaded.Address)
	require.Empty(t, loaded.Mnemonics)
	_, ok := loaded.PrivateKey()
	require.False(t, ok)
	// the stored description unlocks with the mnemonic
	unlocked, e := signer.Unlock(loaded, acc.Mnemonics)
	require.NoError(t, e)
	require.Equal(t, acc.Address, unlocked.Address)
}
