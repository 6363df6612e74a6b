// Package encryption implements the voucher vendor's payload cipher:
// AES-256-CBC with a fixed key and a fixed IV, PKCS#7 padding, base64 text.
//
// The fixed IV makes the scheme deterministic, so identical plaintexts always
// produce identical ciphertexts and equality of payloads leaks on the wire.
// That is a liability inherited from the vendor's protocol, which both sides
// must follow byte-for-byte; it is isolated behind this package so a sane
// scheme can replace it if the vendor ever changes the contract.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"marketgw/internal/apperrors"
)

// Protocol constants shared with the voucher vendor.
var (
	key = []byte("6d66fb7debfd15bf716bb14752b9603b")
	iv  = []byte("716bb14752b9603b")
)

// Encrypt serializes v (strings pass through untouched, anything else is
// JSON-encoded) and returns the base64 ciphertext. On failure no partial
// output is returned.
func Encrypt(v any) (string, error) {
	var plaintext []byte
	switch val := v.(type) {
	case string:
		plaintext = []byte(val)
	case []byte:
		plaintext = val
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("%w: serialize payload: %v", apperrors.ErrCipher, err)
		}
		plaintext = encoded
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrCipher, err)
	}

	padded := pad(plaintext, block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt, returning the plaintext string. Malformed base64,
// a ciphertext that is not block-aligned, or bad padding all fail with a
// wrapped ErrCipher and no partial output.
func Decrypt(encrypted string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %v", apperrors.ErrCipher, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrCipher, err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: ciphertext is not block-aligned", apperrors.ErrCipher)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := unpad(plaintext, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// pad applies PKCS#7 padding.
func pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// unpad strips and verifies PKCS#7 padding.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", apperrors.ErrCipher)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", apperrors.ErrCipher)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", apperrors.ErrCipher)
		}
	}
	return data[:len(data)-padLen], nil
}
