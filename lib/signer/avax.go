package signer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/mr-tron/base58"
	"golang.org/x/text/encoding/unicode"
)

/*
	Avalanche signed messages:
	digest    = SHA256("\x1AAvalanche Signed Message:\n" || size || buffer)
	size      = the big endian uint32 length read as UTF-8, every invalid byte becomes U+FFFD
	signature = cb58(r || s || v) where cb58(b) = base58(b || SHA256(b)[28:])
*/

const (
	AVAXMessagePrefix = "\x1AAvalanche Signed Message:\n"
	AVAXHRP           = "avax"
	AVAXChainAlias    = "X"
	cb58ChecksumSize  = 4
)

var (
	_ ChainSigner   = AVAXSigner{}
	_ ChainVerifier = AVAXSigner{}
)

// AVAXSigner signs the avalanche message digest with a recoverable secp256k1 signature
type AVAXSigner struct{}

// Chain() returns AVAX
func (AVAXSigner) Chain() lib.ChainType { return lib.ChainAVAX }

// Sign() returns cb58(r || s || v)
func (AVAXSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, buffer, func(pk []byte) (string, error) {
		priv, err := crypto.BytesToSECP256K1Private(pk)
		if err != nil {
			return "", lib.ErrInvalidPrivateKey(err)
		}
		digest, err := AVAXDigest(buffer)
		if err != nil {
			return "", err
		}
		sig, err := priv.SignDigest(digest)
		if err != nil {
			return "", err
		}
		return CB58Encode(sig), nil
	})
}

// Verify() recovers the signer from the digest and compares its hash with the sender address
func (AVAXSigner) Verify(msg *lib.Message) (bool, error) {
	sig, err := CB58Decode(msg.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	digest, err := AVAXDigest(msg.VerificationBuffer())
	if err != nil {
		return false, err
	}
	pub, err := crypto.RecoverSECP256K1Public(digest, sig)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	_, hash, e := bech32Hash(trimChainAlias(msg.Sender))
	if e != nil {
		return false, e
	}
	return bytes.Equal(hash, pub.Hash160()), nil
}

// AVAXDigest() builds the hash signed for buffer
func AVAXDigest(buffer []byte) ([]byte, error) {
	size := make([]byte, 4)
	binary.BigEndian.PutUint32(size, uint32(len(buffer)))
	decoder := unicode.UTF8.NewDecoder()
	sizeText, err := decoder.Bytes(size)
	if err != nil {
		return nil, lib.ErrInvalidArgument(err)
	}
	body, err := decoder.Bytes(buffer)
	if err != nil {
		return nil, lib.ErrInvalidArgument(err)
	}
	preimage := append([]byte(AVAXMessagePrefix), sizeText...)
	return crypto.Hash(append(preimage, body...)), nil
}

// AVAXAddress() returns "X-" + bech32("avax", Hash160(pub))
func AVAXAddress(pub []byte) (string, lib.ErrorI) {
	addr, err := Bech32Address(AVAXHRP, pub)
	if err != nil {
		return "", err
	}
	return AVAXChainAlias + "-" + addr, nil
}

// CB58Encode() appends the last 4 bytes of SHA256(b) and base58 encodes
func CB58Encode(b []byte) string {
	sum := crypto.Hash(b)
	return base58.Encode(append(append([]byte{}, b...), sum[len(sum)-cb58ChecksumSize:]...))
}

// CB58Decode() decodes and verifies the trailing checksum
func CB58Decode(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < cb58ChecksumSize {
		return nil, errors.New("cb58 input too short")
	}
	b, checksum := raw[:len(raw)-cb58ChecksumSize], raw[len(raw)-cb58ChecksumSize:]
	sum := crypto.Hash(b)
	if !bytes.Equal(sum[len(sum)-cb58ChecksumSize:], checksum) {
		return nil, errors.New("cb58 checksum mismatch")
	}
	return b, nil
}

// trimChainAlias() drops the "X-" style chain alias of an avalanche address
func trimChainAlias(address string) string {
	if i := strings.Index(address, "-"); i >= 0 {
		return address[i+1:]
	}
	return address
}
