package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"mangaeditor/internal/config"
	"mangaeditor/internal/localcache"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rows"
	"mangaeditor/internal/testsupport"
)

// lockedBuffer lets the watch loop write while the test reads.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func putSnapshot(t *testing.T, cfg *config.Config, snapshot []rows.Row) {
	t.Helper()
	data, err := rows.EncodeSnapshot(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	backend, err := localcache.Open(cfg)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer backend.Close()
	if err := backend.Put(cfg.Cache.Slot, data); err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestWatchSlotRendersChangesOnce(t *testing.T) {
	for _, backendName := range []string{config.CacheBackendFile, config.CacheBackendBolt} {
		t.Run(backendName, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithCacheBackend(backendName))
			putSnapshot(t, cfg, []rows.Row{{ID: 1, Text: "first"}})

			backend, err := localcache.Open(cfg)
			if err != nil {
				t.Fatalf("open cache: %v", err)
			}
			slot, err := localcache.NewSlot(backend, cfg.Cache.Slot)
			if err != nil {
				t.Fatalf("NewSlot: %v", err)
			}
			slotPath := slot.Path()
			_ = backend.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			out := &lockedBuffer{}
			cmd := &cobra.Command{}
			cmd.SetContext(ctx)
			cmd.SetOut(out)
			cmd.SetErr(io.Discard)

			done := make(chan error, 1)
			go func() { done <- watchSlot(cmd, cfg, slotPath, false, logging.NewNop()) }()

			// The watcher may not be registered yet, so keep writing until a render shows up.
			deadline := time.Now().Add(5 * time.Second)
			for !strings.Contains(out.String(), "second") {
				if time.Now().After(deadline) {
					t.Fatalf("change never rendered; output: %q", out.String())
				}
				putSnapshot(t, cfg, []rows.Row{{ID: 1, Text: "second"}})
				time.Sleep(100 * time.Millisecond)
			}

			time.Sleep(2 * watchDebounce)
			settled := strings.Count(out.String(), "rows (cache updated")
			time.Sleep(5 * watchDebounce)
			if got := strings.Count(out.String(), "rows (cache updated"); got != settled {
				t.Fatalf("watch kept re-rendering without changes: %d renders became %d", settled, got)
			}

			putSnapshot(t, cfg, []rows.Row{{ID: 1, Text: "third"}})
			deadline = time.Now().Add(5 * time.Second)
			for !strings.Contains(out.String(), "third") {
				if time.Now().After(deadline) {
					t.Fatalf("second change never rendered; output: %q", out.String())
				}
				time.Sleep(50 * time.Millisecond)
			}

			cancel()
			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("watchSlot: %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("watchSlot did not stop after cancel")
			}
		})
	}
}

func TestWatchSlotRequiresPath(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	if err := watchSlot(cmd, testsupport.NewConfig(t), "", false, logging.NewNop()); err == nil {
		t.Fatal("expected error for empty slot path")
	}
}
