package localcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileBackend keeps each slot in <dir>/<slot>.json. Writers serialise on
// <dir>/<slot>.lock so two editor processes never interleave a rename.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("localcache: cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) slotPath(slot string) string {
	return filepath.Join(b.dir, slot+".json")
}

// Get implements Backend.
func (b *FileBackend) Get(slot string) ([]byte, bool, error) {
	if err := validateSlot(slot); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(b.slotPath(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache slot %s: %w", slot, err)
	}
	return data, true, nil
}

// Put implements Backend. The slot file is replaced by rename.
func (b *FileBackend) Put(slot string, data []byte) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	lock := flock.New(filepath.Join(b.dir, slot+".lock"))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock cache slot %s: %w", slot, err)
	}
	defer func() { _ = lock.Unlock() }()

	target := b.slotPath(slot)
	tmp, err := os.CreateTemp(b.dir, "."+slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Close implements Backend.
func (b *FileBackend) Close() error { return nil }
