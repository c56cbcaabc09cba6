package rows

import (
	"errors"
	"fmt"
	"strings"
)

// Row is one editable table entry.
type Row struct {
	ID          int64  `json:"id"`
	MediaPath   string `json:"mediaPath"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// Field names an editable column of a Row. The id column is not editable.
type Field string

const (
	FieldMediaPath   Field = "mediaPath"
	FieldText        Field = "text"
	FieldTranslation Field = "translation"
)

// ErrUnknownField is returned for a field name outside the editable columns.
var ErrUnknownField = errors.New("unknown field")

// Fields lists the editable columns in display order.
func Fields() []Field {
	return []Field{FieldMediaPath, FieldText, FieldTranslation}
}

// ParseField accepts the editor name (mediaPath) or the storage name
// (media_path) of an editable column.
func ParseField(name string) (Field, error) {
	switch strings.TrimSpace(name) {
	case "mediaPath", "media_path":
		return FieldMediaPath, nil
	case "text":
		return FieldText, nil
	case "translation":
		return FieldTranslation, nil
	}
	return "", fmt.Errorf("%w %q (want mediaPath, text or translation)", ErrUnknownField, name)
}

// Valid reports whether f is an editable column.
func (f Field) Valid() bool {
	switch f {
	case FieldMediaPath, FieldText, FieldTranslation:
		return true
	}
	return false
}

// Get returns the value of field f.
func (r Row) Get(f Field) string {
	switch f {
	case FieldMediaPath:
		return r.MediaPath
	case FieldText:
		return r.Text
	case FieldTranslation:
		return r.Translation
	}
	return ""
}

// With returns a copy of r with field f set to value. Unknown fields leave r unchanged.
func (r Row) With(f Field, value string) Row {
	switch f {
	case FieldMediaPath:
		r.MediaPath = value
	case FieldText:
		r.Text = value
	case FieldTranslation:
		r.Translation = value
	}
	return r
}

// Clone returns an independent copy of snapshot. A nil snapshot clones to an
// empty, non-nil slice so it serialises as [].
func Clone(snapshot []Row) []Row {
	out := make([]Row, len(snapshot))
	copy(out, snapshot)
	return out
}
