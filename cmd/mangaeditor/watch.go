package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mangaeditor/internal/config"
	"mangaeditor/internal/localcache"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rows"
)

const watchDebounce = 150 * time.Millisecond

// watchSlot re-renders the cached table whenever the file behind the slot
// changes. The directory is watched because file slots are replaced by rename.
// Reads go through a read-only backend so rendering never triggers an event,
// and content identical to the last render is skipped.
func watchSlot(cmd *cobra.Command, cfg *config.Config, slotPath string, asJSON bool, logger *slog.Logger) error {
	if slotPath == "" {
		return errors.New("watch requires a file or bolt cache backend")
	}
	slotPath = filepath.Clean(slotPath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(slotPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(slotPath), err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", slotPath)

	var last []byte
	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != slotPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(logger, "cache watcher error", "watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some cache updates may not be shown"),
			)
		case <-debounce.C:
			data, err := renderCachedSlot(cmd, cfg, asJSON, last)
			if err != nil {
				logging.WarnWithContext(logger, "cache slot unreadable", "cache_read_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "display not refreshed"),
				)
				continue
			}
			last = data
		}
	}
}

// renderCachedSlot prints the slot unless it equals last, and returns the bytes
// it read.
func renderCachedSlot(cmd *cobra.Command, cfg *config.Config, asJSON bool, last []byte) ([]byte, error) {
	backend, err := localcache.OpenReadOnly(cfg)
	if err != nil {
		return nil, err
	}
	defer backend.Close()
	slot, err := localcache.NewSlot(backend, cfg.Cache.Slot)
	if err != nil {
		return nil, err
	}
	data, found, err := slot.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("slot %s is empty", slot.Name())
	}
	if last != nil && bytes.Equal(data, last) {
		return data, nil
	}
	snapshot, err := rows.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	if asJSON {
		return data, writeJSON(cmd, snapshot)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderRows(snapshot, 0, false))
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows (cache updated %s)\n", len(snapshot), time.Now().Format("15:04:05"))
	return data, nil
}
