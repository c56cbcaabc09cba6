// Package session wires the cache, row store, startup sync and editor for one
// editing session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"mangaeditor/internal/config"
	"mangaeditor/internal/editor"
	"mangaeditor/internal/localcache"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rowclient"
	"mangaeditor/internal/rowstore"
	"mangaeditor/internal/syncctl"
)

// Option customizes Open.
type Option func(*options)

type options struct {
	source  syncctl.Source
	backend localcache.Backend
}

// WithSource replaces the HTTP row client used for the startup sync.
func WithSource(source syncctl.Source) Option {
	return func(o *options) { o.source = source }
}

// WithBackend supplies the cache backend instead of opening the configured one.
// The session closes it.
func WithBackend(backend localcache.Backend) Option {
	return func(o *options) { o.backend = backend }
}

// Session is one editing session. Open starts the startup sync; Close ends it.
type Session struct {
	ID     string
	Logger *slog.Logger
	Slot   *localcache.Slot
	Store  *rowstore.Store
	Sync   *syncctl.Controller
	Editor *editor.Editor

	backend   localcache.Backend
	closeOnce sync.Once
}

// Open builds a session from cfg and starts its startup sync.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: config is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	base := logging.WithSession(logger, id)
	logger = logging.NewComponentLogger(base, "session")

	backend := o.backend
	if backend == nil {
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		var err error
		backend, err = localcache.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
	}
	slot, err := localcache.NewSlot(backend, cfg.Cache.Slot)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	source := o.source
	if source == nil {
		client, err := rowclient.NewFromConfig(cfg)
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		source = client
	}

	store := rowstore.Initialize(slot, base)
	controller, err := syncctl.New(source, store, cfg.Editor.ReconcilePolicy, base)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	ed, err := editor.New(store, base)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	s := &Session{
		ID:      id,
		Logger:  logger,
		Slot:    slot,
		Store:   store,
		Sync:    controller,
		Editor:  ed,
		backend: backend,
	}
	logger.Info("session opened",
		logging.String("origin", string(store.Origin())),
		logging.String("cache_slot", slot.Name()),
		logging.String("reconcile_policy", cfg.Editor.ReconcilePolicy),
	)
	controller.Start(ctx)
	return s, nil
}

// WaitForSync blocks until the startup sync has finished or ctx ends.
func (s *Session) WaitForSync(ctx context.Context) (syncctl.State, error) {
	return s.Sync.Wait(ctx)
}

// Close discards any pending sync result and releases the cache.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.Sync.Close()
		err = s.backend.Close()
		s.Logger.Debug("session closed")
	})
	return err
}
