package encryption

import (
	"fmt"

	"github.com/aleph-im/aleph-go/lib"
)

func ErrMACMismatch() lib.ErrorI {
	return lib.NewError(lib.CodeMACMismatch, lib.EncryptionModule, "envelope authentication failed")
}

func ErrMalformedEnvelope(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeMalformedEnvelope, lib.EncryptionModule, fmt.Sprintf("malformed envelope: %s", reason))
}

func ErrDecrypt(err error) lib.ErrorI {
	return lib.NewError(lib.CodeDecrypt, lib.EncryptionModule, fmt.Sprintf("decrypt failed with err: %s", err.Error()))
}

func ErrEncrypt(err error) lib.ErrorI {
	return lib.NewError(lib.CodeEncrypt, lib.EncryptionModule, fmt.Sprintf("encrypt failed with err: %s", err.Error()))
}

func ErrInvalidRecipientKey(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRecipientKey, lib.EncryptionModule, fmt.Sprintf("invalid recipient key: %s", err.Error()))
}

func ErrNoLocalKey() lib.ErrorI {
	return lib.NewError(lib.CodeNoLocalKey, lib.EncryptionModule, "account has no local private key to decrypt with")
}

func ErrUnknownCurve(c string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownCurve, lib.EncryptionModule, fmt.Sprintf("unknown curve %q", c))
}
