package rowdb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mangaeditor/internal/config"
	"mangaeditor/internal/rowdb"
	"mangaeditor/internal/rows"
	"mangaeditor/internal/testsupport"
)

func TestOpenCreatesTableAndListsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", records)
	}
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		t.Fatalf("expected sqlite file at %s: %v", cfg.Store.Path, err)
	}
	if store.Driver() != "sqlite" {
		t.Fatalf("Driver = %q", store.Driver())
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewRow(t, store, "/a.png", "x", "y")
	second := testsupport.NewRow(t, store, "/b.png", "", "")
	if second <= first {
		t.Fatalf("ids should increase: %d then %d", first, second)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	got := records[0]
	if got.ID != first || *got.MediaPath != "/a.png" || *got.Text != "x" || *got.Translation != "y" {
		t.Fatalf("unexpected first record: %+v", got)
	}
	if records[1].ID != second {
		t.Fatalf("records not ordered by id: %+v", records)
	}
}

func TestCreateStoresAbsentFieldsAsNull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id, err := store.Create(ctx, rows.Draft{Text: rows.StringPtr("only text")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].ID != id {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].MediaPath != nil || records[0].Translation != nil {
		t.Fatalf("absent fields should be NULL: %+v", records[0])
	}
	if records[0].Text == nil || *records[0].Text != "only text" {
		t.Fatalf("text not stored: %+v", records[0])
	}

	// An explicit empty string is a value, not NULL.
	if _, err := store.Create(ctx, rows.Draft{MediaPath: rows.StringPtr("")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	records, _ = store.List(ctx)
	if records[1].MediaPath == nil || *records[1].MediaPath != "" {
		t.Fatalf("empty string should be stored as empty: %+v", records[1])
	}
}

func TestClosedStoreReportsUnavailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := rowdb.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	_, err = store.List(context.Background())
	if !errors.Is(err, rowdb.ErrStoreUnavailable) {
		t.Fatalf("List error = %v, want ErrStoreUnavailable", err)
	}
	var storeErr *rowdb.StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "list rows" {
		t.Fatalf("expected *StoreError for list rows, got %#v", err)
	}
	if storeErr.Error() != storeErr.Err.Error() {
		t.Fatalf("StoreError should report the driver message, got %q", storeErr.Error())
	}

	if _, err := store.Create(context.Background(), rows.Draft{}); !errors.Is(err, rowdb.ErrStoreUnavailable) {
		t.Fatalf("Create error = %v, want ErrStoreUnavailable", err)
	}
}

func TestReopenKeepsRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := rowdb.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.NewRow(t, store, "/p.png", "t", "")
	_ = store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	records, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected row to survive reopen, got %+v", records)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Store.Driver = "mysql"
	if _, err := rowdb.Open(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := rowdb.OpenSQLite(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	store, err := rowdb.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "rows.db"))
	if err != nil {
		t.Fatalf("OpenSQLite should create parent dirs: %v", err)
	}
	_ = store.Close()
}

// Runs only when a PostgreSQL DSN is provided.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("MANGAEDITOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MANGAEDITOR_TEST_POSTGRES_DSN not set")
	}
	cfg := testsupport.NewConfig(t)
	cfg.Store.Driver = config.StoreDriverPostgres
	cfg.Store.DSN = dsn

	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	id, err := store.Create(ctx, rows.Draft{MediaPath: rows.StringPtr("/pg.png")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.ID == id {
			found = true
			if rec.MediaPath == nil || *rec.MediaPath != "/pg.png" || rec.Text != nil {
				t.Fatalf("unexpected record: %+v", rec)
			}
		}
	}
	if !found {
		t.Fatalf("created id %d not listed", id)
	}
}
