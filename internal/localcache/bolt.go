package localcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltFileName   = "cache.bolt"
	boltBucketName = "slots" // key: slot name -> snapshot bytes
)

// BoltPath returns the bbolt database path inside a cache directory.
func BoltPath(dir string) string {
	return filepath.Join(dir, boltFileName)
}

// BoltBackend keeps every slot as a key in one bbolt database.
type BoltBackend struct {
	db   *bbolt.DB
	path string
}

// OpenBolt opens or creates the database at path. bbolt holds an exclusive
// file lock, so a second process waits up to one second and then fails.
func OpenBolt(path string) (*BoltBackend, error) {
	if path == "" {
		return nil, errors.New("localcache: bolt path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &BoltBackend{db: db, path: path}, nil
}

// OpenBoltReadOnly opens an existing database for reading. Nothing is written
// to the file, so watchers of path see no events. Put fails on the result.
func OpenBoltReadOnly(path string) (*BoltBackend, error) {
	if path == "" {
		return nil, errors.New("localcache: bolt path is required")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open bolt cache %s read-only: %w", path, err)
	}
	return &BoltBackend{db: db, path: path}, nil
}

// Get implements Backend.
func (b *BoltBackend) Get(slot string) ([]byte, bool, error) {
	if err := validateSlot(slot); err != nil {
		return nil, false, err
	}
	var (
		data  []byte
		found bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketName))
		if bucket == nil {
			return nil
		}
		value := bucket.Get([]byte(slot))
		if value == nil {
			return nil
		}
		// value is only valid for the life of the transaction.
		data = append([]byte(nil), value...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache slot %s: %w", slot, err)
	}
	return data, found, nil
}

// Put implements Backend.
func (b *BoltBackend) Put(slot string, data []byte) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	if err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketName)).Put([]byte(slot), data)
	}); err != nil {
		return fmt.Errorf("write cache slot %s: %w", slot, err)
	}
	return nil
}

// Close implements Backend.
func (b *BoltBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
