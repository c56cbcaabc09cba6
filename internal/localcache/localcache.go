package localcache

import (
	"errors"
	"fmt"
	"strings"

	"mangaeditor/internal/config"
)

// ErrInvalidSlot is returned for an empty slot name or one containing a path separator.
var ErrInvalidSlot = errors.New("invalid cache slot")

// Backend is a durable key-value store of named slots.
type Backend interface {
	// Get returns the slot's bytes and whether the slot exists.
	Get(slot string) ([]byte, bool, error)
	// Put replaces the slot's bytes. A reader never observes a partial write.
	Put(slot string, data []byte) error
	Close() error
}

// Open builds the backend selected by cfg.Cache.Backend.
func Open(cfg *config.Config) (Backend, error) {
	if cfg == nil {
		return nil, errors.New("localcache: config is required")
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendFile, "":
		return NewFileBackend(cfg.Cache.Dir)
	case config.CacheBackendBolt:
		return OpenBolt(BoltPath(cfg.Cache.Dir))
	default:
		return nil, fmt.Errorf("localcache: unsupported backend %q", cfg.Cache.Backend)
	}
}

// OpenReadOnly builds the configured backend for reads only. Neither backend
// touches the files it reads, and the bolt backend requires the database to
// exist already.
func OpenReadOnly(cfg *config.Config) (Backend, error) {
	if cfg == nil {
		return nil, errors.New("localcache: config is required")
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendFile, "":
		return &FileBackend{dir: cfg.Cache.Dir}, nil
	case config.CacheBackendBolt:
		return OpenBoltReadOnly(BoltPath(cfg.Cache.Dir))
	default:
		return nil, fmt.Errorf("localcache: unsupported backend %q", cfg.Cache.Backend)
	}
}

// Slot binds a backend to one slot name.
type Slot struct {
	backend Backend
	name    string
}

// NewSlot returns a handle for the named slot.
func NewSlot(backend Backend, name string) (*Slot, error) {
	if err := validateSlot(name); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, errors.New("localcache: backend is required")
	}
	return &Slot{backend: backend, name: name}, nil
}

// Name returns the slot name.
func (s *Slot) Name() string { return s.name }

// Load returns the slot content and whether it exists.
func (s *Slot) Load() ([]byte, bool, error) {
	return s.backend.Get(s.name)
}

// Save replaces the slot content.
func (s *Slot) Save(data []byte) error {
	return s.backend.Put(s.name, data)
}

// Path returns the file that changes when the slot is written, or "" for
// backends that are not file backed.
func (s *Slot) Path() string {
	switch b := s.backend.(type) {
	case *FileBackend:
		return b.slotPath(s.name)
	case *BoltBackend:
		return b.path
	}
	return ""
}

func validateSlot(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSlot)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, name)
	}
	return nil
}
