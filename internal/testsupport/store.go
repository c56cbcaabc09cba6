package testsupport

import (
	"context"
	"testing"

	"mangaeditor/internal/config"
	"mangaeditor/internal/rowdb"
	"mangaeditor/internal/rows"
)

// MustOpenStore opens a rowdb.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *rowdb.Store {
	t.Helper()

	store, err := rowdb.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("rowdb.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRow inserts a row with every field set and returns its id.
func NewRow(t testing.TB, store *rowdb.Store, mediaPath, text, translation string) int64 {
	t.Helper()

	id, err := store.Create(context.Background(), rows.Draft{
		MediaPath:   rows.StringPtr(mediaPath),
		Text:        rows.StringPtr(text),
		Translation: rows.StringPtr(translation),
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return id
}
