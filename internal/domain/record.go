package domain

import "time"

// AssociationSuffix marks a field holding the ID of an associated record
const AssociationSuffix = "_id"

// Record represents one row inserted into the fixture store
type Record struct {
	ID        string         `json:"id" yaml:"id"`
	Schema    string         `json:"schema" yaml:"schema"`
	Name      string         `json:"name" yaml:"name"`
	Fields    map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`

	// Associations is populated only by a preloading read
	Associations map[string]*Record `json:"associations,omitempty" yaml:"associations,omitempty"`
}

// NewRecord creates a record with initialized fields
func NewRecord(schema, name string) *Record {
	now := time.Now().UTC()
	return &Record{
		Schema:    schema,
		Name:      name,
		Fields:    make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetField sets a field value
func (r *Record) SetField(key string, value any) {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[key] = value
}

// GetField gets a field value
func (r *Record) GetField(key string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[key]
	return v, ok
}

// AssociationField returns the field name that stores the ID of assoc
func AssociationField(assoc string) string {
	return assoc + AssociationSuffix
}

// AssociationID returns the ID stored for assoc, if any
func (r *Record) AssociationID(assoc string) (string, bool) {
	v, ok := r.GetField(AssociationField(assoc))
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
