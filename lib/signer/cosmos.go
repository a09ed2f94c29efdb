package signer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

/* This file implements the cosmos-sdk scheme: the buffer is wrapped in an amino sign doc for an off-chain text message */

const (
	CosmosSignDocChainID = "signed-message-v1"
	CosmosMsgType        = "signutil/MsgSignText"
	CosmosPubKeyType     = "tendermint/PubKeySecp256k1"
)

var (
	_ ChainSigner   = CosmosSigner{}
	_ ChainVerifier = CosmosSigner{}
)

// CosmosSignDoc is the amino StdSignDoc, fields are declared in key order so the encoding is canonical
type CosmosSignDoc struct {
	AccountNumber string      `json:"account_number"`
	ChainID       string      `json:"chain_id"`
	Fee           CosmosFee   `json:"fee"`
	Memo          string      `json:"memo"`
	Msgs          []CosmosMsg `json:"msgs"`
	Sequence      string      `json:"sequence"`
}

// CosmosFee is always empty for signed text
type CosmosFee struct {
	Amount []json.RawMessage `json:"amount"`
	Gas    string            `json:"gas"`
}

// CosmosMsg wraps the signed text
type CosmosMsg struct {
	Type  string        `json:"type"`
	Value CosmosMsgText `json:"value"`
}

// CosmosMsgText is the text and the account signing it
type CosmosMsgText struct {
	Message string `json:"message"`
	Signer  string `json:"signer"`
}

// CosmosSignature is the signature envelope written to the message
type CosmosSignature struct {
	PubKey    CosmosPubKey `json:"pub_key"`
	Signature string       `json:"signature"`
}

// CosmosPubKey is the amino typed public key
type CosmosPubKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewCosmosSignDoc() wraps buffer for signer
func NewCosmosSignDoc(buffer []byte, signer string) CosmosSignDoc {
	return CosmosSignDoc{
		AccountNumber: "0",
		ChainID:       CosmosSignDocChainID,
		Fee:           CosmosFee{Amount: []json.RawMessage{}, Gas: "0"},
		Memo:          "",
		Msgs:          []CosmosMsg{{Type: CosmosMsgType, Value: CosmosMsgText{Message: string(buffer), Signer: signer}}},
		Sequence:      "0",
	}
}

// Bytes() returns the canonical encoding that is hashed and signed
func (d CosmosSignDoc) Bytes() ([]byte, lib.ErrorI) { return lib.MarshalCanonicalJSON(d) }

// CosmosSigner signs the canonical sign doc with SHA-256 and a 64 byte r || s signature
type CosmosSigner struct{}

// Chain() returns CSDK
func (CosmosSigner) Chain() lib.ChainType { return lib.ChainCSDK }

// Sign() returns the JSON signature envelope, an external signer gets the canonical sign doc and answers with the envelope
func (CosmosSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	doc, err := NewCosmosSignDoc(buffer, account.Address).Bytes()
	if err != nil {
		return "", err
	}
	return signWith(ctx, account, doc, func(pk []byte) (string, error) {
		priv, er := crypto.BytesToSECP256K1Private(pk)
		if er != nil {
			return "", lib.ErrInvalidPrivateKey(er)
		}
		out, e := lib.MarshalCanonicalJSON(CosmosSignature{
			PubKey: CosmosPubKey{
				Type:  CosmosPubKeyType,
				Value: base64.StdEncoding.EncodeToString(priv.SECP256K1PublicKey().Bytes()),
			},
			Signature: base64.StdEncoding.EncodeToString(priv.Sign(doc)),
		})
		if e != nil {
			return "", e
		}
		return string(out), nil
	})
}

// Verify() checks the envelope's key owns the sender address and signed the rebuilt sign doc
func (CosmosSigner) Verify(msg *lib.Message) (bool, error) {
	env := new(CosmosSignature)
	if err := lib.UnmarshalJSON([]byte(msg.Signature), env); err != nil {
		return false, ErrInvalidSignature(err)
	}
	pubBz, err := base64.StdEncoding.DecodeString(env.PubKey.Value)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	pub, err := crypto.BytesToSECP256K1Public(pubBz)
	if err != nil {
		return false, lib.ErrInvalidPublicKey(err)
	}
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	_, hash, e := bech32Hash(msg.Sender)
	if e != nil {
		return false, e
	}
	if !bytes.Equal(hash, pub.Hash160()) {
		return false, nil
	}
	doc, e := NewCosmosSignDoc(msg.VerificationBuffer(), msg.Sender).Bytes()
	if e != nil {
		return false, e
	}
	return pub.VerifyBytes(doc, sig), nil
}

// Bech32Address() encodes Hash160(pub) under hrp
func Bech32Address(hrp string, pub []byte) (string, lib.ErrorI) {
	conv, err := bech32.ConvertBits(crypto.Hash160(pub), 8, 5, true)
	if err != nil {
		return "", lib.ErrInvalidPublicKey(err)
	}
	addr, err := bech32.Encode(hrp, conv)
	if err != nil {
		return "", lib.ErrInvalidAddress(err)
	}
	return addr, nil
}

// bech32Hash() decodes a bech32 address into its hrp and 20 byte hash
func bech32Hash(address string) (string, []byte, lib.ErrorI) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", nil, lib.ErrInvalidAddress(err)
	}
	hash, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, lib.ErrInvalidAddress(err)
	}
	return hrp, hash, nil
}
