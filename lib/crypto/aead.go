package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
)

const (
	CBCKeySize = 32 // AES-256
	CBCIVSize  = aes.BlockSize
	MACKeySize = 32
	MACSize    = sha256.Size
)

var (
	ErrBadPadding = errors.New("bad pkcs7 padding")
)

// DeriveCBCKeys() splits SHA-512(sharedSecret) into an AES-256 key (first 32 bytes) and an HMAC-SHA256 key (last 32 bytes)
func DeriveCBCKeys(sharedSecret []byte) (encKey, macKey []byte) {
	h := sha512.Sum512(sharedSecret)
	encKey, macKey = make([]byte, CBCKeySize), make([]byte, MACKeySize)
	copy(encKey, h[:CBCKeySize])
	copy(macKey, h[CBCKeySize:])
	return
}

// AESCBCEncrypt() PKCS7 pads the plaintext and encrypts it with AES-256-CBC
func AESCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != CBCIVSize {
		return nil, errors.New("invalid iv length")
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// AESCBCDecrypt() decrypts AES-256-CBC ciphertext and removes the PKCS7 padding
func AESCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != CBCIVSize {
		return nil, errors.New("invalid iv length")
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not a multiple of the block size")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out, aes.BlockSize)
}

// HMACSHA256() returns the HMAC-SHA256 of the concatenated parts
func HMACSHA256(key []byte, parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// MACEqual() compares two MACs in constant time
func MACEqual(a, b []byte) bool { return hmac.Equal(a, b) }

// pkcs7Pad() appends n bytes of value n so the length is a multiple of blockSize, a full block is added when already aligned
func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Unpad() validates and strips PKCS7 padding
func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrBadPadding
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, ErrBadPadding
		}
	}
	return b[:len(b)-n], nil
}
