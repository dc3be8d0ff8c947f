package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"repocache/internal/domain"
)

// ============================================================================
// Conversion Helpers
// ============================================================================

// timeLayout is the text form timestamps are stored in
const timeLayout = time.RFC3339Nano

// formatTime converts a time to its stored text form
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime converts stored text back to a time
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target.
// Numbers come back as float64 whatever type was stored; callers that compare
// field values hold the stored form, not the value they inserted.
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals a field map to nullable JSON string
// Returns empty NullString for nil or empty maps
func marshalToNull(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Record Row Scanner
// ============================================================================

// recordRow holds all columns from a record query for scanning
type recordRow struct {
	ID         string
	Schema     string
	Name       string
	FieldsJSON sql.NullString
	CreatedAt  string
	UpdatedAt  string
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match recordColumns order exactly:
// id, schema_name, name, fields, created_at, updated_at
func (r *recordRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,         // 1
		&r.Schema,     // 2
		&r.Name,       // 3
		&r.FieldsJSON, // 4
		&r.CreatedAt,  // 5
		&r.UpdatedAt,  // 6
	}
}

// toDomain converts the scanned row to a domain.Record
func (r *recordRow) toDomain() (*domain.Record, error) {
	rec := &domain.Record{
		ID:     r.ID,
		Schema: r.Schema,
		Name:   r.Name,
		Fields: make(map[string]any),
	}

	if err := unmarshalJSONField(r.FieldsJSON, &rec.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}

	var err error
	if rec.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return rec, nil
}

// recordColumns returns the SELECT column list for record queries
const recordColumns = `id, schema_name, name, fields, created_at, updated_at`

// ============================================================================
// Record Write Helpers
// ============================================================================

// recordInsertArgs prepares arguments for record INSERT
// Returns: id, schema_name, name, fields, created_at, updated_at
func recordInsertArgs(rec *domain.Record) ([]interface{}, error) {
	fieldsJSON, err := marshalToNull(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	return []interface{}{
		rec.ID,
		rec.Schema,
		rec.Name,
		fieldsJSON,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	}, nil
}
