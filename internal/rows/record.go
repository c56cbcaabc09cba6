package rows

import (
	"errors"
	"fmt"
)

// ErrInvalidRecords marks a row service payload that failed validation.
var ErrInvalidRecords = errors.New("invalid row records")

// Record is a row as stored and listed by the row service. Text columns are
// nullable because create stores absent fields as NULL.
type Record struct {
	ID          int64   `json:"id"`
	MediaPath   *string `json:"media_path" jsonschema:"oneof_type=string;null"`
	Text        *string `json:"text" jsonschema:"oneof_type=string;null"`
	Translation *string `json:"translation" jsonschema:"oneof_type=string;null"`
}

// Draft is the create-row request body. Nil fields are stored as NULL.
type Draft struct {
	MediaPath   *string `json:"mediaPath,omitempty"`
	Text        *string `json:"text,omitempty"`
	Translation *string `json:"translation,omitempty"`
}

// Created is the create-row response body.
type Created struct {
	ID int64 `json:"id"`
}

// Row translates a storage record into the editor shape; NULL becomes "".
func (r Record) Row() Row {
	return Row{
		ID:          r.ID,
		MediaPath:   deref(r.MediaPath),
		Text:        deref(r.Text),
		Translation: deref(r.Translation),
	}
}

// FromRecords translates a listed snapshot, preserving order. Ids must be
// positive and unique.
func FromRecords(records []Record) ([]Row, error) {
	out := make([]Row, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, rec := range records {
		if rec.ID <= 0 {
			return nil, fmt.Errorf("%w: record %d has id %d", ErrInvalidRecords, i, rec.ID)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidRecords, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec.Row())
	}
	return out, nil
}

// StringPtr returns a pointer to value.
func StringPtr(value string) *string {
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
