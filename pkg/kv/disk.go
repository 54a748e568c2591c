package kv

import (
	"errors"
	"fmt"
	"path"

	"github.com/shashiranjanraj/meatshop/pkg/storage"
)

// Disk stores each key as <dir>/<key>.json on a storage.Disk.
type Disk struct {
	disk storage.Disk
	dir  string
}

func NewDisk(d storage.Disk, dir string) *Disk {
	return &Disk{disk: d, dir: dir}
}

func (d *Disk) file(key string) string {
	return path.Join(d.dir, key+".json")
}

func (d *Disk) Get(key string) ([]byte, error) {
	raw, err := d.disk.Get(d.file(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv/disk: get %s: %w", key, err)
	}
	return raw, nil
}

func (d *Disk) Set(key string, value []byte) error {
	if err := d.disk.Put(d.file(key), value); err != nil {
		return fmt.Errorf("kv/disk: set %s: %w", key, err)
	}
	return nil
}

func (d *Disk) Delete(key string) error {
	if err := d.disk.Delete(d.file(key)); err != nil {
		return fmt.Errorf("kv/disk: delete %s: %w", key, err)
	}
	return nil
}
