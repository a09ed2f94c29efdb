package signer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/aleph-im/aleph-go/lib/nuls"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

/* This file implements the NULS family schemes, both sign the magic hash of the verification buffer */

var (
	_ ChainSigner   = NULS2Signer{}
	_ ChainVerifier = NULS2Signer{}
	_ ChainSigner   = NULSSigner{}
	_ ChainVerifier = NULSSigner{}
)

// NULS2Signer signs with a base64 compact recoverable signature, header 27 + recovery id
type NULS2Signer struct{}

// Chain() returns NULS2
func (NULS2Signer) Chain() lib.ChainType { return lib.ChainNULS2 }

// Sign() returns base64(compact signature of MagicHash(buffer))
func (NULS2Signer) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, buffer, func(pk []byte) (string, error) {
		digest, err := nuls.MagicHash(buffer)
		if err != nil {
			return "", err
		}
		priv, _, e := btcecKey(pk)
		if e != nil {
			return "", e
		}
		// not the compressed flavor, the header carries 27 + recovery id only
		return base64.StdEncoding.EncodeToString(ecdsa.SignCompact(priv, digest, false)), nil
	})
}

// Verify() recovers the public key and compares its hash with the sender's address payload
func (NULS2Signer) Verify(msg *lib.Message) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(msg.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	digest, e := nuls.MagicHash(msg.VerificationBuffer())
	if e != nil {
		return false, e
	}
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	return senderMatches(msg.Sender, pub.SerializeCompressed(), nuls.NULS2Params)
}

// NULSSigner is the pre NULS2 scheme: a DER signature bundled with the public key
// hex(varint(len(pub)) || pub || 0x00 || varint(len(der)) || der)
type NULSSigner struct{}

// Chain() returns NULS
func (NULSSigner) Chain() lib.ChainType { return lib.ChainNULS }

// Sign() returns the hex encoded signature bundle of MagicHash(buffer)
func (NULSSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, buffer, func(pk []byte) (string, error) {
		digest, err := nuls.MagicHash(buffer)
		if err != nil {
			return "", err
		}
		priv, pub, e := btcecKey(pk)
		if e != nil {
			return "", e
		}
		der := ecdsa.Sign(priv, digest).Serialize()
		out, err := lib.WriteWithLength(pub.SerializeCompressed())
		if err != nil {
			return "", err
		}
		out = append(out, 0)
		sigPart, err := lib.WriteWithLength(der)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(append(out, sigPart...)), nil
	})
}

// Verify() splits the bundle, checks the DER signature and that the bundled key owns the sender address
func (NULSSigner) Verify(msg *lib.Message) (bool, error) {
	bundle, err := hex.DecodeString(msg.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	pubBz, rest, e := readWithLength(bundle)
	if e != nil {
		return false, e
	}
	if len(rest) == 0 || rest[0] != 0 {
		return false, ErrInvalidSignature(errors.New("missing separator"))
	}
	der, _, e := readWithLength(rest[1:])
	if e != nil {
		return false, e
	}
	pub, err := btcec.ParsePubKey(pubBz)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	digest, e := nuls.MagicHash(msg.VerificationBuffer())
	if e != nil {
		return false, e
	}
	if !sig.Verify(digest, pub) {
		return false, nil
	}
	return senderMatches(msg.Sender, pub.SerializeCompressed(), nuls.LegacyParams)
}

// senderMatches() compares the public key hash inside the sender address with Hash160(pub)
func senderMatches(sender string, pub []byte, p nuls.AddressParams) (bool, error) {
	payload, err := p.HashFromAddress(sender)
	if err != nil {
		return false, err
	}
	if len(payload) != nuls.PayloadSize {
		return false, lib.ErrInvalidAddress(errors.New("unexpected payload size"))
	}
	return bytes.Equal(payload[3:], crypto.Hash160(pub)), nil
}

// btcecKey() parses a 32 byte scalar, rejecting zero and out of range values
func btcecKey(pk []byte) (*btcec.PrivateKey, *btcec.PublicKey, lib.ErrorI) {
	if _, err := crypto.BytesToSECP256K1Private(pk); err != nil {
		return nil, nil, lib.ErrInvalidPrivateKey(err)
	}
	priv, pub := btcec.PrivKeyFromBytes(pk)
	return priv, pub, nil
}

// readWithLength() reads a varint length prefixed field and returns it with the remainder
func readWithLength(b []byte) (field, rest []byte, err lib.ErrorI) {
	n, size, err := lib.DecodeVarint(b)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(b)-size) < n {
		return nil, nil, lib.ErrVarintTruncated()
	}
	end := size + int(n)
	return b[size:end], b[end:], nil
}
