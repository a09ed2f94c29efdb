package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/stretchr/testify/require"
)

func TestSECP256K1Bytes(t *testing.T) {
	// private key testing
	privateKey, err := NewSECP256K1PrivateKey()
	require.NoError(t, err)
	privateKey2, err := BytesToSECP256K1Private(privateKey.Bytes())
	require.NoError(t, err)
	require.True(t, privateKey.Equals(privateKey2))
	privateKey3, err := StringToSECP256K1Private(privateKey.String())
	require.NoError(t, err)
	require.True(t, privateKey.Equals(privateKey3))
	// public key testing
	pubKey := privateKey.SECP256K1PublicKey()
	require.Len(t, pubKey.Bytes(), SECP256K1PubKeySize)
	require.Len(t, pubKey.Uncompressed(), SECP256K1UncompressedKeySize)
	// compressed and uncompressed encodings parse to the same key
	fromCompressed, err := BytesToSECP256K1Public(pubKey.Bytes())
	require.NoError(t, err)
	fromUncompressed, err := BytesToSECP256K1Public(pubKey.Uncompressed())
	require.NoError(t, err)
	require.True(t, pubKey.Equals(fromCompressed))
	require.True(t, pubKey.Equals(fromUncompressed))
	require.Len(t, pubKey.Hash160(), Hash160Size)
	// a wrong length is rejected
	_, err = BytesToSECP256K1Public(make([]byte, 64))
	require.Error(t, err)
	// a zero scalar is rejected
	_, err = BytesToSECP256K1Private(make([]byte, 32))
	require.Error(t, err)
}

func TestSECP256K1SignAndVerify(t *testing.T) {
	// create the private key
	pk, err := NewSECP256K1PrivateKey()
	require.NoError(t, err)
	// get the public key paired with the private key
	pubKey := pk.PublicKey()
	// create a random 100 byte message to sign
	msg := make([]byte, 100)
	_, err = rand.Read(msg)
	require.NoError(t, err)
	// sign the message using the private key
	signature := pk.Sign(msg)
	require.Len(t, signature, SECP256K1SignatureSize)
	require.True(t, pubKey.VerifyBytes(msg, signature))
	// ensure the verification fails for another message
	require.False(t, pubKey.VerifyBytes(append(msg, 0x01), signature))
}

func TestSECP256K1SignDigestAndRecover(t *testing.T) {
	pk, err := NewSECP256K1PrivateKey()
	require.NoError(t, err)
	digest := Hash([]byte("digest"))
	// sign a prehashed digest
	sig, err := pk.SignDigest(digest)
	require.NoError(t, err)
	require.Len(t, sig, SECP256K1RecoverableSigSize)
	// the signer is recoverable
	recovered, err := RecoverSECP256K1Public(digest, sig)
	require.NoError(t, err)
	require.True(t, recovered.Equals(pk.PublicKey()))
	// the recoverable form verifies too
	require.True(t, recovered.VerifyDigest(digest, sig))
	// a short signature cannot be recovered
	_, err = RecoverSECP256K1Public(digest, sig[:64])
	require.Error(t, err)
}

func TestETHSECP256K1PersonalSign(t *testing.T) {
	pk, err := NewETHSECP256K1PrivateKey()
	require.NoError(t, err)
	pub := pk.ETHPublicKey()
	msg := []byte("ETH\n0xabc\nPOST\nhash")
	// sign with the personal_sign scheme
	sig := pk.Sign(msg)
	require.Len(t, sig, SECP256K1RecoverableSigSize)
	require.Contains(t, []byte{27, 28}, sig[64])
	// the signature recovers to the address
	addr, err := RecoverPersonalSign(msg, sig)
	require.NoError(t, err)
	require.Equal(t, pub.Address(), addr.Hex())
	require.True(t, pub.VerifyBytes(msg, sig))
	require.False(t, pub.VerifyBytes([]byte("other"), sig))
	// the digest is the EIP-191 text hash of the message
	raw, err := pk.SignDigest(accounts.TextHash(msg))
	require.NoError(t, err)
	require.Equal(t, raw[:64], sig[:64])
	// key encodings
	require.Len(t, pub.Bytes(), ETHSECP256K1PubKeySize)
	require.Len(t, pub.Compressed(), SECP256K1PubKeySize)
	parsed, err := BytesToEthSECP256K1Public(pub.Bytes())
	require.NoError(t, err)
	require.True(t, pub.Equals(parsed))
}
