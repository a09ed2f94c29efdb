package lib

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalJSON(t *testing.T) {
	// html characters are kept as-is and there is no trailing newline
	got, err := MarshalCanonicalJSON(map[string]string{"b": "<a&b>", "a": "x"})
	require.NoError(t, err)
	require.Equal(t, `{"a":"x","b":"<a&b>"}`, string(got))
}

func TestStringToBytes(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		input    string
		expected []byte
		error    bool
	}{
		{
			name:     "plain hex",
			detail:   "hex without a prefix",
			input:    "0aff",
			expected: []byte{0x0a, 0xff},
		},
		{
			name:     "prefixed hex",
			detail:   "the 0x prefix is stripped",
			input:    "0x0aff",
			expected: []byte{0x0a, 0xff},
		},
		{
			name:   "invalid hex",
			detail: "odd length hex is rejected",
			input:  "0af",
			error:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// execute the function call
			got, err := StringToBytes(test.input)
			// validate the error
			require.Equal(t, test.error, err != nil, err)
			if test.error {
				require.True(t, IsError(err, MainModule, CodeStringToBytes))
				return
			}
			require.Equal(t, test.expected, got)
		})
	}
}

func TestHexBytesJSON(t *testing.T) {
	type wrapper struct {
		Key HexBytes `json:"key"`
	}
	// marshal
	bz, err := MarshalJSON(wrapper{Key: []byte{0xde, 0xad}})
	require.NoError(t, err)
	require.Equal(t, `{"key":"dead"}`, string(bz))
	// unmarshal accepts a 0x prefix
	got := new(wrapper)
	require.NoError(t, UnmarshalJSON([]byte(`{"key":"0xdead"}`), got))
	require.Equal(t, HexBytes{0xde, 0xad}, got.Key)
}

func TestJSONFile(t *testing.T) {
	dir := t.TempDir()
	// save an account description
	expected := NewAccount(ChainETH, "0xabc", []byte{1, 2}, nil)
	require.NoError(t, SaveJSONToFile(expected, dir, AccountFilePath))
	// read it back
	got := new(Account)
	require.NoError(t, NewJSONFromFile(got, dir, AccountFilePath))
	require.Equal(t, expected.Address, got.Address)
	require.Equal(t, expected.PublicKey, got.PublicKey)
	// a missing file is a read error
	err := NewJSONFromFile(got, dir, "missing.json")
	require.True(t, IsError(err, MainModule, CodeReadFile))
	// the file is private
	info, e := os.Stat(dir + "/" + AccountFilePath)
	require.NoError(t, e)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
