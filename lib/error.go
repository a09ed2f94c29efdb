package lib

import (
	"fmt"
	"math"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	// Constructs a new Error instance
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// IsError() returns true if err is an ErrorI with the given module and code
func IsError(err error, module ErrorModule, code ErrorCode) bool {
	e, ok := err.(ErrorI)
	if !ok || e == nil {
		return false
	}
	return e.Module() == module && e.Code() == code
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal        ErrorCode = 1
	CodeJSONUnmarshal      ErrorCode = 2
	CodeStringToBytes      ErrorCode = 3
	CodeWriteFile          ErrorCode = 4
	CodeReadFile           ErrorCode = 5
	CodeVarintOutOfRange   ErrorCode = 6
	CodeVarintTruncated    ErrorCode = 7
	CodeInvalidArgument    ErrorCode = 8
	CodeUnknownChain       ErrorCode = 9
	CodeExternalSignerOnly ErrorCode = 10

	// Address Module
	AddressModule ErrorModule = "address"

	// Address Module Error Codes
	CodeInvalidAddress    ErrorCode = 1
	CodeInvalidPrivateKey ErrorCode = 2
	CodeInvalidPublicKey  ErrorCode = 3

	// Encryption Module
	EncryptionModule ErrorModule = "encryption"

	// Encryption Module Error Codes
	CodeMACMismatch         ErrorCode = 1
	CodeMalformedEnvelope   ErrorCode = 2
	CodeDecrypt             ErrorCode = 3
	CodeEncrypt             ErrorCode = 4
	CodeInvalidRecipientKey ErrorCode = 5
	CodeNoLocalKey          ErrorCode = 6
	CodeUnknownCurve        ErrorCode = 7

	// Signer Module
	SignerModule ErrorModule = "signer"

	// Signer Module Error Codes
	CodeNoKeyMaterial      ErrorCode = 1
	CodeSign               ErrorCode = 2
	CodeInvalidMnemonic    ErrorCode = 3
	CodeUnsupportedChain   ErrorCode = 4
	CodeDeriveKey          ErrorCode = 5
	CodeInvalidSignature   ErrorCode = 6
	CodeExternalSigner     ErrorCode = 7
	CodeUnverifiableChain  ErrorCode = 8
	CodeMismatchedSignerID ErrorCode = 9

	// RPC Module
	RPCModule              ErrorModule = "rpc"
	CodeRPCTimeout         ErrorCode   = 1
	CodeInvalidParams      ErrorCode   = 2
	CodePostRequest        ErrorCode   = 3
	CodeGetRequest         ErrorCode   = 4
	CodeHttpStatus         ErrorCode   = 5
	CodeReadBody           ErrorCode   = 6
	CodeMissingFile        ErrorCode   = 7
	CodeUnsupportedStore   ErrorCode   = 8
	CodeUploadFailed       ErrorCode   = 9
	CodeNewRequest         ErrorCode   = 10
	CodeUnsupportedContent ErrorCode   = 11
)

// error implementations below for the `lib` package
func newLogError(err error) ErrorI {
	return NewError(NoCode, MainModule, err.Error())
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrVarintOutOfRange(n uint64) ErrorI {
	return NewError(CodeVarintOutOfRange, MainModule, fmt.Sprintf("varint value %d exceeds the 4 byte maximum", n))
}

func ErrVarintTruncated() ErrorI {
	return NewError(CodeVarintTruncated, MainModule, "varint is truncated")
}

func ErrInvalidArgument(err error) ErrorI {
	return NewError(CodeInvalidArgument, MainModule, fmt.Sprintf("invalid argument: %s", err.Error()))
}

func ErrUnknownChain(chain ChainType) ErrorI {
	return NewError(CodeUnknownChain, MainModule, fmt.Sprintf("unknown chain %q", chain))
}

func ErrExternalSignerOnly() ErrorI {
	return NewError(CodeExternalSignerOnly, MainModule, "account has no local private key")
}

func ErrInvalidAddress(err error) ErrorI {
	return NewError(CodeInvalidAddress, AddressModule, fmt.Sprintf("invalid address: %s", err.Error()))
}

func ErrInvalidPrivateKey(err error) ErrorI {
	return NewError(CodeInvalidPrivateKey, AddressModule, fmt.Sprintf("invalid private key: %s", err.Error()))
}

func ErrInvalidPublicKey(err error) ErrorI {
	return NewError(CodeInvalidPublicKey, AddressModule, fmt.Sprintf("invalid public key: %s", err.Error()))
}
