package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/aleph-im/aleph-go/lib"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

/*
	Substrate accounts sign with sr25519 under the "substrate" signing context.
	ss58 address = base58(format || pub || blake2b512("SS58PRE" || format || pub)[:2]) for formats below 64
*/

const (
	DefaultSS58Format = 42
	SR25519Curve      = "sr25519"
	ss58Prefix        = "SS58PRE"
	ss58ChecksumSize  = 2
)

var substrateContext = []byte("substrate")

var (
	_ ChainSigner   = DOTSigner{}
	_ ChainVerifier = DOTSigner{}
)

// DOTSignature is the signature envelope written to the message
type DOTSignature struct {
	Curve string `json:"curve"`
	Data  string `json:"data"`
}

// DOTSigner signs with sr25519, the local key is the 32 byte mini secret
type DOTSigner struct{}

// Chain() returns DOT
func (DOTSigner) Chain() lib.ChainType { return lib.ChainDOT }

// Sign() returns {"curve":"sr25519","data":"0x..."}
func (DOTSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, buffer, func(pk []byte) (string, error) {
		mini, err := miniSecret(pk)
		if err != nil {
			return "", err
		}
		sig, err := mini.ExpandEd25519().Sign(schnorrkel.NewSigningContext(substrateContext, buffer))
		if err != nil {
			return "", err
		}
		enc := sig.Encode()
		out, e := lib.MarshalCanonicalJSON(DOTSignature{Curve: SR25519Curve, Data: hexutil.Encode(enc[:])})
		if e != nil {
			return "", e
		}
		return string(out), nil
	})
}

// Verify() checks the sr25519 signature against the key inside the sender's ss58 address
func (DOTSigner) Verify(msg *lib.Message) (bool, error) {
	env := new(DOTSignature)
	if err := lib.UnmarshalJSON([]byte(msg.Signature), env); err != nil {
		return false, ErrInvalidSignature(err)
	}
	if env.Curve != SR25519Curve {
		return false, ErrInvalidSignature(fmt.Errorf("unsupported curve %q", env.Curve))
	}
	raw, err := hexutil.Decode(env.Data)
	if err != nil || len(raw) != schnorrkel.SignatureSize {
		return false, ErrInvalidSignature(errors.New("malformed sr25519 signature"))
	}
	_, pubBz, e := SS58Decode(msg.Sender)
	if e != nil {
		return false, e
	}
	var pubArr [schnorrkel.PublicKeySize]byte
	copy(pubArr[:], pubBz)
	pub, err := schnorrkel.NewPublicKey(pubArr)
	if err != nil {
		return false, lib.ErrInvalidPublicKey(err)
	}
	var sigArr [schnorrkel.SignatureSize]byte
	copy(sigArr[:], raw)
	sig := new(schnorrkel.Signature)
	if err = sig.Decode(sigArr); err != nil {
		return false, ErrInvalidSignature(err)
	}
	ok, err := pub.Verify(sig, schnorrkel.NewSigningContext(substrateContext, msg.VerificationBuffer()))
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	return ok, nil
}

// miniSecret() parses a 32 byte sr25519 mini secret
func miniSecret(pk []byte) (*schnorrkel.MiniSecretKey, error) {
	if len(pk) != schnorrkel.MiniSecretKeySize {
		return nil, lib.ErrInvalidPrivateKey(fmt.Errorf("expected %d bytes, got %d", schnorrkel.MiniSecretKeySize, len(pk)))
	}
	var raw [schnorrkel.MiniSecretKeySize]byte
	copy(raw[:], pk)
	return schnorrkel.NewMiniSecretKeyFromRaw(raw)
}

// SS58Encode() encodes a 32 byte public key under a single byte format
func SS58Encode(pub []byte, format uint8) (string, lib.ErrorI) {
	if format >= 64 {
		return "", lib.ErrInvalidArgument(fmt.Errorf("ss58 format %d needs the two byte form", format))
	}
	if len(pub) != schnorrkel.PublicKeySize {
		return "", lib.ErrInvalidPublicKey(fmt.Errorf("expected %d bytes, got %d", schnorrkel.PublicKeySize, len(pub)))
	}
	body := append([]byte{format}, pub...)
	return base58.Encode(append(body, ss58Checksum(body)...)), nil
}

// SS58Decode() returns the format and the public key of an ss58 address, the checksum is verified
func SS58Decode(address string) (uint8, []byte, lib.ErrorI) {
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, nil, lib.ErrInvalidAddress(err)
	}
	if len(raw) != 1+schnorrkel.PublicKeySize+ss58ChecksumSize {
		return 0, nil, lib.ErrInvalidAddress(fmt.Errorf("unexpected ss58 length %d", len(raw)))
	}
	body, sum := raw[:len(raw)-ss58ChecksumSize], raw[len(raw)-ss58ChecksumSize:]
	if !bytes.Equal(ss58Checksum(body), sum) {
		return 0, nil, lib.ErrInvalidAddress(errors.New("ss58 checksum mismatch"))
	}
	return body[0], body[1:], nil
}

// ss58Checksum() returns the first two bytes of blake2b512("SS58PRE" || body)
func ss58Checksum(body []byte) []byte {
	h := blake2b.Sum512(append([]byte(ss58Prefix), body...))
	return h[:ss58ChecksumSize]
}
