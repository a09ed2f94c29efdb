package signer

import (
	"fmt"

	"github.com/aleph-im/aleph-go/lib"
)

func ErrNoKeyMaterial(chain lib.ChainType) lib.ErrorI {
	return lib.NewError(lib.CodeNoKeyMaterial, lib.SignerModule, fmt.Sprintf("%s account has neither a private key nor a signer", chain))
}

func ErrSign(chain lib.ChainType, err error) lib.ErrorI {
	return lib.NewError(lib.CodeSign, lib.SignerModule, fmt.Sprintf("%s sign failed with err: %s", chain, err.Error()))
}

func ErrInvalidMnemonic() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidMnemonic, lib.SignerModule, "invalid mnemonic")
}

func ErrUnsupportedChain(chain lib.ChainType) lib.ErrorI {
	return lib.NewError(lib.CodeUnsupportedChain, lib.SignerModule, fmt.Sprintf("no account constructor for chain %q", chain))
}

func ErrDeriveKey(err error) lib.ErrorI {
	return lib.NewError(lib.CodeDeriveKey, lib.SignerModule, fmt.Sprintf("key derivation failed with err: %s", err.Error()))
}

func ErrInvalidSignature(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidSignature, lib.SignerModule, fmt.Sprintf("invalid signature: %s", err.Error()))
}

func ErrExternalSigner(err error) lib.ErrorI {
	return lib.NewError(lib.CodeExternalSigner, lib.SignerModule, fmt.Sprintf("external signer failed with err: %s", err.Error()))
}

func ErrUnverifiableChain(chain lib.ChainType) lib.ErrorI {
	return lib.NewError(lib.CodeUnverifiableChain, lib.SignerModule, fmt.Sprintf("no verifier for chain %q", chain))
}

func ErrMismatchedSignerID(expected, got string) lib.ErrorI {
	return lib.NewError(lib.CodeMismatchedSignerID, lib.SignerModule, fmt.Sprintf("signature belongs to %s, expected %s", got, expected))
}
