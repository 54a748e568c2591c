// Package storage provides the filesystem abstraction behind the disk KV
// driver.
//
// Two drivers are available:
//   - "local" — local filesystem rooted at STORAGE_LOCAL_ROOT (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Quick start:
//
//	disks := storage.NewManager()
//	d, err := disks.Use(config.StorageDefault())
//	err = d.Put("kv/cartItems.json", data)
package storage

import "errors"

// ErrNotFound is returned by Get when nothing is stored at path.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// Get returns the full content of the file at path, or ErrNotFound.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// Files lists the files directly inside directory.
	Files(directory string) ([]string, error)
}
