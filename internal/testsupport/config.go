package testsupport

import (
	"path/filepath"
	"testing"

	"mangaeditor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a normalized config rooted in a per-test temp directory.
// The sqlite store and the cache live under that directory, the service binds
// an ephemeral loopback port, and logging stays quiet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Store.Path = filepath.Join(base, "data", "database.db")
	cfgVal.Cache.Dir = filepath.Join(base, "data", "cache")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServerURL points the editor at a test server.
func WithServerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Editor.ServerURL = url
	}
}

// WithCacheBackend selects the cache backend (file or bolt).
func WithCacheBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Backend = backend
	}
}

// WithReconcilePolicy sets the startup reconcile policy.
func WithReconcilePolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Editor.ReconcilePolicy = policy
	}
}
