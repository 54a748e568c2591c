package kv

import (
	"fmt"

	"github.com/shashiranjanraj/meatshop/pkg/crypt"
)

// Encrypted seals every value before it reaches the wrapped store, so the
// session token and user record are not readable on disk, S3 or Redis.
type Encrypted struct {
	inner  Store
	cipher *crypt.Cipher
}

func NewEncrypted(inner Store, c *crypt.Cipher) *Encrypted {
	return &Encrypted{inner: inner, cipher: c}
}

func (e *Encrypted) Get(key string) ([]byte, error) {
	raw, err := e.inner.Get(key)
	if err != nil {
		return nil, err
	}
	plain, err := e.cipher.Open(raw)
	if err != nil {
		return nil, fmt.Errorf("kv/encrypted: get %s: %w", key, err)
	}
	return plain, nil
}

func (e *Encrypted) Set(key string, value []byte) error {
	sealed, err := e.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("kv/encrypted: set %s: %w", key, err)
	}
	return e.inner.Set(key, sealed)
}

func (e *Encrypted) Delete(key string) error {
	return e.inner.Delete(key)
}
