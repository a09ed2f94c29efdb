package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestED25519Bytes(t *testing.T) {
	// private key testing
	privateKey, err := NewEd25519PrivateKey()
	require.NoError(t, err)
	privateKey2, err := BytesToED25519Private(privateKey.Bytes())
	require.NoError(t, err)
	require.True(t, privateKey.Equals(privateKey2))
	// a 32 byte seed expands to the same key
	privateKey3, err := BytesToED25519Private(privateKey.Seed())
	require.NoError(t, err)
	require.True(t, privateKey.Equals(privateKey3))
	// public key testing
	pubKey := privateKey.PublicKey()
	pubKey2, err := BytesToED25519Public(pubKey.Bytes())
	require.NoError(t, err)
	require.True(t, pubKey.Equals(pubKey2))
	// bad lengths are rejected
	_, err = BytesToED25519Private(make([]byte, 31))
	require.Error(t, err)
	_, err = BytesToED25519Public(make([]byte, 33))
	require.Error(t, err)
}

func TestED25519SignAndVerify(t *testing.T) {
	// create the private key
	pk, err := NewEd25519PrivateKey()
	require.NoError(t, err)
	// get the public key paired with the private key
	pubKey := pk.PublicKey()
	// create a random 100 byte message to sign
	msg := make([]byte, 100)
	_, err = rand.Read(msg)
	require.NoError(t, err)
	// sign the message using the private key
	signature := pk.Sign(msg)
	require.Len(t, signature, Ed25519SignatureSize)
	require.True(t, pubKey.VerifyBytes(msg, signature))
	// a second call is served from the cache
	require.True(t, pubKey.VerifyBytes(msg, signature))
	// a different message fails
	require.False(t, pubKey.VerifyBytes(append(msg, 0x01), signature))
	// a truncated signature fails
	require.False(t, pubKey.VerifyBytes(msg, signature[:10]))
}
