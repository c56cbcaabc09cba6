package rowdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mangaeditor/internal/config"
	"mangaeditor/internal/rows"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is the relational row store.
type Store struct {
	db      *sql.DB
	dialect dialect
	// location is the sqlite path or "postgres"; DSNs are never kept.
	location string
}

// Open connects to the backend selected by cfg.Store.Driver and creates the
// rows table if it is absent.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("rowdb: config is required")
	}
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite, "":
		return OpenSQLite(ctx, cfg.Store.Path)
	case config.StoreDriverPostgres:
		return OpenPostgres(ctx, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("rowdb: unsupported driver %q", cfg.Store.Driver)
	}
}

// OpenSQLite opens (or creates) the sqlite database at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rowdb: sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeError("open", fmt.Errorf("open sqlite db: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, storeError("open", fmt.Errorf("apply pragma %q: %w", pragma, execErr))
		}
	}
	return initStore(ctx, db, sqliteDialect, path)
}

// OpenPostgres connects using a lib/pq DSN.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("rowdb: postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, storeError("open", fmt.Errorf("open postgres db: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, storeError("open", fmt.Errorf("ping postgres: %w", err))
	}
	return initStore(ctx, db, postgresDialect, "postgres")
}

func initStore(ctx context.Context, db *sql.DB, d dialect, location string) (*Store, error) {
	s := &Store{db: db, dialect: d, location: location}
	if err := s.retry(ctx, func() error {
		_, err := db.ExecContext(ctx, d.schema)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, storeError("open", fmt.Errorf("create schema: %w", err))
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Driver returns "sqlite" or "postgres".
func (s *Store) Driver() string { return s.dialect.name }

// Location returns the sqlite file path, or "postgres".
func (s *Store) Location() string { return s.location }

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return storeError("ping", s.db.PingContext(ctx))
}

// List returns every row ordered by id.
func (s *Store) List(ctx context.Context) ([]rows.Record, error) {
	var records []rows.Record
	err := s.retry(ctx, func() error {
		records = records[:0]
		result, err := s.db.QueryContext(ctx, s.dialect.list)
		if err != nil {
			return err
		}
		defer result.Close()
		for result.Next() {
			rec, err := scanRecord(result)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return result.Err()
	})
	if err != nil {
		return nil, storeError("list rows", err)
	}
	if records == nil {
		records = []rows.Record{}
	}
	return records, nil
}

// Create stores draft as given. Nil fields are stored as NULL.
func (s *Store) Create(ctx context.Context, draft rows.Draft) (int64, error) {
	var id int64
	err := s.retry(ctx, func() error {
		return s.db.QueryRowContext(ctx, s.dialect.insert,
			nullableString(draft.MediaPath),
			nullableString(draft.Text),
			nullableString(draft.Translation),
		).Scan(&id)
	})
	if err != nil {
		return 0, storeError("create row", err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (rows.Record, error) {
	var (
		rec                          rows.Record
		mediaPath, text, translation sql.NullString
	)
	if err := sc.Scan(&rec.ID, &mediaPath, &text, &translation); err != nil {
		return rows.Record{}, err
	}
	rec.MediaPath = stringPtr(mediaPath)
	rec.Text = stringPtr(text)
	rec.Translation = stringPtr(translation)
	return rec, nil
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func (s *Store) retry(ctx context.Context, op func() error) error {
	if !s.dialect.retryBusy {
		return op()
	}
	return retryOnBusy(ctx, op)
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
