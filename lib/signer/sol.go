package signer

import (
	"context"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

var (
	_ ChainSigner   = SOLSigner{}
	_ ChainVerifier = SOLSigner{}
)

// SOLSignature is the signature envelope written to the message
type SOLSignature struct {
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// SOLSigner signs with a detached ed25519 signature, the local key is the 64 byte secret key
type SOLSigner struct{}

// Chain() returns SOL
func (SOLSigner) Chain() lib.ChainType { return lib.ChainSOL }

// Sign() returns {"signature":base58,"publicKey":address}
// a wallet provider receives base58(buffer) and its answer is written as is
func (SOLSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, []byte(base58.Encode(buffer)), func(pk []byte) (string, error) {
		key := solana.PrivateKey(pk)
		sig, err := key.Sign(buffer)
		if err != nil {
			return "", lib.ErrInvalidPrivateKey(err)
		}
		out, e := lib.MarshalCanonicalJSON(SOLSignature{
			Signature: base58.Encode(sig[:]),
			PublicKey: key.PublicKey().String(),
		})
		if e != nil {
			return "", e
		}
		return string(out), nil
	})
}

// Verify() checks that the envelope's key is the sender and that it signed the buffer
func (SOLSigner) Verify(msg *lib.Message) (bool, error) {
	env := new(SOLSignature)
	if err := lib.UnmarshalJSON([]byte(msg.Signature), env); err != nil {
		return false, ErrInvalidSignature(err)
	}
	if env.PublicKey != msg.Sender {
		return false, ErrMismatchedSignerID(msg.Sender, env.PublicKey)
	}
	solPub, err := solana.PublicKeyFromBase58(env.PublicKey)
	if err != nil {
		return false, lib.ErrInvalidAddress(err)
	}
	sig, err := solana.SignatureFromBase58(env.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	pub, err := crypto.BytesToED25519Public(solPub.Bytes())
	if err != nil {
		return false, lib.ErrInvalidPublicKey(err)
	}
	return pub.VerifyBytes(msg.VerificationBuffer(), sig[:]), nil
}
