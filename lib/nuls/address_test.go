package nuls

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

func newTestPublicKey(t *testing.T) []byte {
	pk, err := crypto.NewSECP256K1PrivateKey()
	require.NoError(t, err)
	return pk.SECP256K1PublicKey().Bytes()
}

func TestPublicKeyToHash(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		params   AddressParams
		expected []byte
	}{
		{
			name:     "nuls2",
			detail:   "chain id 1 little endian followed by address type 1",
			params:   NULS2Params,
			expected: []byte{0x01, 0x00, 0x01},
		},
		{
			name:     "legacy",
			detail:   "chain id 8964 (0x2304) little endian followed by address type 1",
			params:   LegacyParams,
			expected: []byte{0x04, 0x23, 0x01},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pub := newTestPublicKey(t)
			// execute the function call
			got := PublicKeyToHash(pub, test.params)
			// validate the layout
			require.Len(t, got, PayloadSize)
			require.Equal(t, test.expected, got[:3])
			require.Equal(t, crypto.Hash160(pub), got[3:])
		})
	}
}

func TestAddressRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		params AddressParams
		header string
	}{
		{
			name:   "nuls2",
			detail: "the NULS prefix is followed by chr(4+96) = 'd'",
			params: NULS2Params,
			header: "NULSd",
		},
		{
			name:   "legacy",
			detail: "legacy addresses are bare base58",
			params: LegacyParams,
			header: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload := PublicKeyToHash(newTestPublicKey(t), test.params)
			// encode
			address := AddressFromHash(payload, test.params.Prefix)
			require.True(t, strings.HasPrefix(address, test.header))
			// the body is base58 of payload || xor
			body, err := base58.Decode(strings.TrimPrefix(address, test.header))
			require.NoError(t, err)
			require.Equal(t, payload, body[:PayloadSize])
			require.Equal(t, xorChecksum(payload), body[PayloadSize])
			// decode returns the payload
			got, e := test.params.HashFromAddress(address)
			require.NoError(t, e)
			require.Equal(t, payload, got)
			// the checksum holds
			require.True(t, VerifyChecksum(address, test.params))
		})
	}
}

func TestHashFromAddressAnyPayload(t *testing.T) {
	for i := 0; i < 50; i++ {
		payload := make([]byte, PayloadSize)
		_, err := rand.Read(payload)
		require.NoError(t, err)
		// decode(encode(payload)) == payload for all 23 byte payloads
		got, e := HashFromAddress(AddressFromHash(payload, NULS2Prefix))
		require.NoError(t, e)
		require.Equal(t, payload, got)
	}
}

func TestHashFromAddressDoesNotVerifyChecksum(t *testing.T) {
	payload := PublicKeyToHash(newTestPublicKey(t), NULS2Params)
	// build an address with a wrong checksum
	bad := Header(NULS2Prefix) + base58.Encode(append(bytes.Clone(payload), xorChecksum(payload)^0xFF))
	// decoding still succeeds
	got, err := HashFromAddress(bad)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	// the opt-in check catches it
	require.False(t, VerifyChecksum(bad, NULS2Params))
}

func TestHashFromAddressInvalid(t *testing.T) {
	// '0' and 'l' are outside of the base58 alphabet
	_, err := HashFromAddress("NULSd0l")
	require.True(t, lib.IsError(err, lib.AddressModule, lib.CodeInvalidAddress))
	require.False(t, VerifyChecksum("NULSd0l", NULS2Params))
}
