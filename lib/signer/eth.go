package signer

import (
	"context"
	"errors"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	_ ChainSigner   = ETHSigner{}
	_ ChainVerifier = ETHSigner{}
)

// ETHSigner signs the buffer as an EIP-191 personal message
type ETHSigner struct{}

// Chain() returns ETH
func (ETHSigner) Chain() lib.ChainType { return lib.ChainETH }

// Sign() returns the 0x prefixed 65 byte personal_sign signature, an external signer gets the raw buffer
func (ETHSigner) Sign(ctx context.Context, account *lib.Account, buffer []byte) (string, error) {
	return signWith(ctx, account, buffer, func(pk []byte) (string, error) {
		priv, err := crypto.BytesToEthSECP256K1Private(pk)
		if err != nil {
			return "", lib.ErrInvalidPrivateKey(err)
		}
		return hexutil.Encode(priv.Sign(buffer)), nil
	})
}

// Verify() recovers the signing address and compares it with the sender, ignoring checksum case
func (ETHSigner) Verify(msg *lib.Message) (bool, error) {
	sig, err := hexutil.Decode(msg.Signature)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	if !common.IsHexAddress(msg.Sender) {
		return false, lib.ErrInvalidAddress(errors.New("sender is not a hex address"))
	}
	signer, err := crypto.RecoverPersonalSign(msg.VerificationBuffer(), sig)
	if err != nil {
		return false, ErrInvalidSignature(err)
	}
	return signer == common.HexToAddress(msg.Sender), nil
}
