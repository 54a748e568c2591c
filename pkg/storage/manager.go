package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
)

// ─── Manager ──────────────────────────────────────────────────────────────────

// Manager is a registry of named disks.
type Manager struct {
	mu    sync.RWMutex
	disks map[string]Disk
}

// NewManager boots the "local" disk and, when S3_BUCKET is configured, the
// "s3" disk.
func NewManager() *Manager {
	m := &Manager{disks: map[string]Disk{
		"local": NewLocalDisk(config.StorageLocalRoot()),
	}}

	if config.StorageS3Bucket() != "" {
		d, err := NewS3Disk(S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.disks["s3"] = d
		}
	}

	return m
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Register plugs in a custom Disk implementation.
func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disks[name] = d
}
