package rows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformedSnapshot marks cached snapshot bytes that are not an ordered
// sequence of well-formed rows with unique ids.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

const (
	rowSchemaURL    = "https://mangaeditor.local/schema/row.json"
	recordSchemaURL = "https://mangaeditor.local/schema/record.json"
)

type compiledSchemas struct {
	rowJSON []byte
	row     *validator.Schema
	record  *validator.Schema
}

var (
	schemasOnce sync.Once
	schemas     compiledSchemas
	schemasErr  error
)

func loadSchemas() (compiledSchemas, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas()
	})
	return schemas, schemasErr
}

func compileSchemas() (compiledSchemas, error) {
	// Cached rows are the editor's own output, so unknown keys are rejected.
	// Service records tolerate extra columns.
	rowJSON, err := reflectSchema(reflect.TypeFor[Row](), false)
	if err != nil {
		return compiledSchemas{}, err
	}
	recordJSON, err := reflectSchema(reflect.TypeFor[Record](), true)
	if err != nil {
		return compiledSchemas{}, err
	}

	compiler := validator.NewCompiler()
	for url, raw := range map[string][]byte{rowSchemaURL: rowJSON, recordSchemaURL: recordJSON} {
		doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return compiledSchemas{}, fmt.Errorf("decode schema %s: %w", url, err)
		}
		if err := compiler.AddResource(url, doc); err != nil {
			return compiledSchemas{}, fmt.Errorf("add schema %s: %w", url, err)
		}
	}
	row, err := compiler.Compile(rowSchemaURL)
	if err != nil {
		return compiledSchemas{}, fmt.Errorf("compile row schema: %w", err)
	}
	record, err := compiler.Compile(recordSchemaURL)
	if err != nil {
		return compiledSchemas{}, fmt.Errorf("compile record schema: %w", err)
	}
	return compiledSchemas{rowJSON: rowJSON, row: row, record: record}, nil
}

func reflectSchema(t reflect.Type, allowAdditional bool) ([]byte, error) {
	r := jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: allowAdditional,
	}
	data, err := json.Marshal(r.ReflectFromType(t))
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", t.Name(), err)
	}
	return data, nil
}

// RowSchema returns the JSON Schema every cached row must satisfy.
func RowSchema() ([]byte, error) {
	s, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(s.rowJSON), nil
}

// EncodeSnapshot serialises a snapshot for the local cache. Output is compact
// and deterministic, so saving the same snapshot twice writes identical bytes.
func EncodeSnapshot(snapshot []Row) ([]byte, error) {
	if snapshot == nil {
		snapshot = []Row{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses cached bytes. Any structural problem yields an error
// wrapping ErrMalformedSnapshot.
func DecodeSnapshot(data []byte) ([]Row, error) {
	s, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	for i, item := range items {
		if err := s.row.Validate(item); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedSnapshot, i, err)
		}
	}

	var snapshot []Row
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	seen := make(map[int64]struct{}, len(snapshot))
	for _, row := range snapshot {
		if _, dup := seen[row.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedSnapshot, row.ID)
		}
		seen[row.ID] = struct{}{}
	}
	if snapshot == nil {
		snapshot = []Row{}
	}
	return snapshot, nil
}

// DecodeRecords parses a list-rows response body and checks every element
// against the record schema. Errors wrap ErrInvalidRecords.
func DecodeRecords(data []byte) ([]Record, error) {
	s, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecords, err)
	}
	for i, item := range items {
		if err := s.record.Validate(item); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRecords, i, err)
		}
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecords, err)
	}
	return records, nil
}

func decodeArray(data []byte) ([]any, error) {
	inst, err := validator.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	items, ok := inst.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", inst)
	}
	return items, nil
}
