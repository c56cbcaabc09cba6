// Package rowstore holds the authoritative in-memory table for one editing
// session and mirrors every change into the local cache.
package rowstore

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mangaeditor/internal/logging"
	"mangaeditor/internal/rows"
)

// ErrDuplicateID is returned by Replace when a snapshot repeats an id.
var ErrDuplicateID = errors.New("duplicate row id")

// Cache is the durable slot the store mirrors into. *localcache.Slot satisfies it.
type Cache interface {
	Load() ([]byte, bool, error)
	Save(data []byte) error
}

// Origin reports where the initial table came from.
type Origin string

const (
	OriginCache Origin = "cache"
	OriginSeed  Origin = "seed"
)

// Store is safe for concurrent use. Cache writes happen while the lock is
// held so they land in the same order as the mutations that caused them.
type Store struct {
	mu         sync.Mutex
	rows       []rows.Row
	selected   int64
	hasSelect  bool
	generation uint64
	origin     Origin

	cache  Cache
	logger *slog.Logger
}

// Initialize loads the cached snapshot, falling back to the seed when the
// slot is missing, unreadable, or malformed. It never writes the cache.
func Initialize(cache Cache, logger *slog.Logger) *Store {
	logger = logging.NewComponentLogger(logger, "rowstore")
	s := &Store{
		cache:     cache,
		logger:    logger,
		origin:    OriginSeed,
		selected:  rows.SeedSelectedID,
		hasSelect: true,
	}

	snapshot, ok := s.loadCached()
	if ok {
		s.rows = snapshot
		s.origin = OriginCache
	} else {
		s.rows = rows.Seed()
	}
	logger.Debug("row store initialized",
		logging.String("origin", string(s.origin)),
		logging.Int(logging.FieldRowCount, len(s.rows)),
	)
	return s
}

func (s *Store) loadCached() ([]rows.Row, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, found, err := s.cache.Load()
	if err != nil {
		logging.WarnWithContext(s.logger, "cache read failed; using seed", "cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "session starts from the seed table"),
		)
		return nil, false
	}
	if !found {
		return nil, false
	}
	snapshot, err := rows.DecodeSnapshot(data)
	if err != nil {
		logging.WarnWithContext(s.logger, "cached snapshot malformed; using seed", "cache_malformed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the next edit or save overwrites the slot"),
			logging.String(logging.FieldImpact, "session starts from the seed table"),
		)
		return nil, false
	}
	return snapshot, true
}

// Origin reports whether the initial table came from the cache or the seed.
func (s *Store) Origin() Origin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// Snapshot returns a copy of the current table.
func (s *Store) Snapshot() []rows.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rows.Clone(s.rows)
}

// Row returns the row with id.
func (s *Store) Row(id int64) (rows.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.rows[i], true
	}
	return rows.Row{}, false
}

// Generation counts applied mutations. Replace does not advance it.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Replace swaps the whole table and rewrites the cache.
func (s *Store) Replace(snapshot []rows.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(snapshot)
}

// ReplaceIfUnchanged swaps the table only when no mutation has been applied
// since generation was observed. It reports whether the swap happened.
func (s *Store) ReplaceIfUnchanged(snapshot []rows.Row, generation uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		return false, nil
	}
	if err := s.replaceLocked(snapshot); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) replaceLocked(snapshot []rows.Row) error {
	seen := make(map[int64]struct{}, len(snapshot))
	for _, row := range snapshot {
		if _, dup := seen[row.ID]; dup {
			return fmt.Errorf("replace: %w: %d", ErrDuplicateID, row.ID)
		}
		seen[row.ID] = struct{}{}
	}
	s.rows = rows.Clone(snapshot)
	return s.saveLocked()
}

// Mutate sets one field on the row with id and rewrites the cache. An unknown
// id changes nothing and reports false. The in-memory update stands even when
// the cache write fails.
func (s *Store) Mutate(id int64, field rows.Field, value string) (bool, error) {
	if !field.Valid() {
		return false, fmt.Errorf("mutate: %w: %q", rows.ErrUnknownField, field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.rows[i] = s.rows[i].With(field, value)
	s.generation++
	return true, s.saveLocked()
}

// Select sets the selected row id without checking that it exists.
func (s *Store) Select(id int64) {
	s.mu.Lock()
	s.selected, s.hasSelect = id, true
	s.mu.Unlock()
}

// ClearSelection leaves no row selected.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selected, s.hasSelect = 0, false
	s.mu.Unlock()
}

// Selection returns the selected id and whether one is set.
func (s *Store) Selection() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelect
}

// Save writes the current table to the cache.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if s.cache == nil {
		return nil
	}
	data, err := rows.EncodeSnapshot(s.rows)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.cache.Save(data); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (s *Store) indexOf(id int64) int {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return i
		}
	}
	return -1
}
