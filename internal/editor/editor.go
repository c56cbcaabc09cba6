// Package editor is the only path through which a session's rows change.
package editor

import (
	"errors"
	"log/slog"

	"mangaeditor/internal/logging"
	"mangaeditor/internal/rows"
	"mangaeditor/internal/rowstore"
)

// Editor applies cell edits to a row store.
type Editor struct {
	store  *rowstore.Store
	logger *slog.Logger
}

// New returns an editor over store.
func New(store *rowstore.Store, logger *slog.Logger) (*Editor, error) {
	if store == nil {
		return nil, errors.New("editor: row store is required")
	}
	return &Editor{store: store, logger: logging.NewComponentLogger(logger, "editor")}, nil
}

// EditCell sets one field of the row with rowID and rewrites the cache before
// returning. fieldName is mediaPath, text or translation; anything else fails
// with rows.ErrUnknownField. An unknown rowID is ignored and reports false.
func (e *Editor) EditCell(rowID int64, fieldName, value string) (bool, error) {
	field, err := rows.ParseField(fieldName)
	if err != nil {
		return false, err
	}
	applied, err := e.store.Mutate(rowID, field, value)
	if err != nil {
		logging.WarnWithContext(e.logger, "cell edit not persisted", "cache_write_failed",
			logging.Int64(logging.FieldRowID, rowID),
			logging.String("field", string(field)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "edit is kept in memory only"),
		)
		return applied, err
	}
	if !applied {
		e.logger.Debug("edit ignored for unknown row", logging.Int64(logging.FieldRowID, rowID))
		return false, nil
	}
	e.logger.Debug("cell edited",
		logging.Int64(logging.FieldRowID, rowID),
		logging.String("field", string(field)),
	)
	return true, nil
}

// SaveSnapshot writes the whole table to the cache. Repeated calls write
// identical content.
func (e *Editor) SaveSnapshot() error {
	return e.store.Save()
}

// Select marks rowID as the selected row. The id is not checked.
func (e *Editor) Select(rowID int64) {
	e.store.Select(rowID)
}

// ClearSelection leaves no row selected.
func (e *Editor) ClearSelection() {
	e.store.ClearSelection()
}
