// Package kv is the durable key-value layer the stores persist their
// snapshots to. Values are JSON documents under a handful of fixed keys:
//
//	cartItems   → []models.CartLine
//	currentUser → models.User (absent when logged out)
//	token       → string
//
// Three drivers share the Store interface: Memory (tests, ephemeral runs),
// Disk (one file per key on a storage.Disk, local or S3) and Redis. Any of
// them can be wrapped in Encrypted.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyCart  = "cartItems"
	KeyUser  = "currentUser"
	KeyToken = "token"
)

// ErrNotFound is returned by Get when key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a synchronous string-keyed byte store.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// GetJSON decodes the value at key into dest. It reports false when the key
// is absent; a present but undecodable value is an error.
func GetJSON(s Store, key string, dest any) (bool, error) {
	raw, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.Set(key, raw)
}
