package nuls

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/crypto"
	"github.com/mr-tron/base58"
)

/*
	NULS family addresses:
	payload  = LE16(chain_id) || u8(address_type) || RIPEMD160(SHA256(pub))   (23 bytes)
	checksum = XOR of every payload byte
	address  = prefix || chr(len(prefix)+96) || base58(payload || checksum)
	The legacy chain carries no prefix and no header character.
*/

const (
	PayloadSize  = 3 + crypto.Hash160Size // chain id + address type + public key hash
	NULS2Prefix  = "NULS"
	headerOffset = 96 // chr(len(prefix)+96) separates the prefix from the base58 body
)

// AddressParams is one of the constant (chain id, address type, prefix) sets, they are never mixed
type AddressParams struct {
	ChainID     uint16
	AddressType uint8
	Prefix      string
}

var (
	NULS2Params  = AddressParams{ChainID: 1, AddressType: 1, Prefix: NULS2Prefix}
	LegacyParams = AddressParams{ChainID: 8964, AddressType: 1}
)

// PublicKeyToHash() builds the 23 byte address payload for a public key
func PublicKeyToHash(pub []byte, p AddressParams) []byte {
	out := make([]byte, 3, PayloadSize)
	binary.LittleEndian.PutUint16(out, p.ChainID)
	out[2] = p.AddressType
	return append(out, crypto.Hash160(pub)...)
}

// AddressFromHash() encodes a payload with its checksum and the optional prefix header
func AddressFromHash(payload []byte, prefix string) string {
	body := make([]byte, 0, len(payload)+1)
	body = append(append(body, payload...), xorChecksum(payload))
	encoded := base58.Encode(body)
	if prefix == "" {
		return encoded
	}
	return Header(prefix) + encoded
}

// Header() returns prefix || chr(len(prefix)+96)
func Header(prefix string) string { return prefix + string(rune(len(prefix)+headerOffset)) }

// Address() derives the address of a public key under these params
func (p AddressParams) Address(pub []byte) string {
	return AddressFromHash(PublicKeyToHash(pub, p), p.Prefix)
}

// HashFromAddress() strips the NULS2 header if present, decodes the base58 body and drops the trailing checksum
// the checksum is not verified, see VerifyChecksum
func HashFromAddress(address string) ([]byte, lib.ErrorI) {
	return NULS2Params.HashFromAddress(address)
}

// HashFromAddress() strips this params' header if present, decodes the base58 body and drops the trailing checksum
func (p AddressParams) HashFromAddress(address string) ([]byte, lib.ErrorI) {
	if p.Prefix != "" {
		address = strings.TrimPrefix(address, Header(p.Prefix))
	}
	decoded, err := base58.Decode(address)
	if err != nil {
		return nil, lib.ErrInvalidAddress(err)
	}
	if len(decoded) < 2 {
		return nil, lib.ErrInvalidAddress(fmt.Errorf("address %q is too short", address))
	}
	return decoded[:len(decoded)-1], nil
}

// VerifyChecksum() returns true if the address decodes and its last byte is the XOR of the payload
func VerifyChecksum(address string, p AddressParams) bool {
	if p.Prefix != "" {
		address = strings.TrimPrefix(address, Header(p.Prefix))
	}
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) < 2 {
		return false
	}
	payload := decoded[:len(decoded)-1]
	return xorChecksum(payload) == decoded[len(decoded)-1]
}

// xorChecksum() folds every byte with XOR
func xorChecksum(b []byte) (x byte) {
	for _, v := range b {
		x ^= v
	}
	return
}
