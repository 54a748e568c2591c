// Package crypt provides AES-256-GCM authenticated encryption.
//
// Sealed output is nonce || ciphertext || tag, base64url-encoded so it can
// sit in a file, a Redis string or a DB column unchanged.
//
//	c, err := crypt.New(secret)
//	sealed, err := c.Seal([]byte(`{"id":"1"}`))
//	plain, err := c.Open(sealed)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDecrypt is returned when a value cannot be decoded or authenticated.
	ErrDecrypt = errors.New("crypt: decryption failed")

	ErrNoKey = errors.New("crypt: empty key")
)

// Cipher seals and opens values with one key.
type Cipher struct {
	gcm cipher.AEAD
}

// New derives a 32-byte key from secret with SHA-256.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrNoKey
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return &Cipher{gcm: gcm}, nil
}

// Seal encrypts plain with a fresh random nonce.
func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("crypt: nonce: %w", err)
	}
	sealed := c.gcm.Seal(nonce, nonce, plain, nil)

	out := make([]byte, base64.URLEncoding.EncodedLen(len(sealed)))
	base64.URLEncoding.Encode(out, sealed)
	return out, nil
}

// Open reverses Seal. Tampered or foreign input yields ErrDecrypt.
func (c *Cipher) Open(encoded []byte) ([]byte, error) {
	data := make([]byte, base64.URLEncoding.DecodedLen(len(encoded)))
	n, err := base64.URLEncoding.Decode(data, encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	data = data[:n]

	size := c.gcm.NonceSize()
	if len(data) < size {
		return nil, ErrDecrypt
	}
	plain, err := c.gcm.Open(nil, data[:size], data[size:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}
