// Package codec exports and imports repo cache snapshots.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"repocache/internal/cache"
)

// Snapshot is the serializable form of a cache.
type Snapshot struct {
	Schemas map[string]map[string]any `json:"schemas" yaml:"schemas"`
	Aliases map[string]cache.Ref      `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Fields  map[string]any            `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Importer interface for reading snapshots from various formats
type Importer interface {
	Parse(r io.Reader) (*Snapshot, error)
	Format() string
}

// Exporter interface for writing snapshots to various formats
type Exporter interface {
	Export(s *Snapshot, w io.Writer) error
	Format() string
}

// Codec reads and writes one snapshot format.
type Codec interface {
	Importer
	Exporter
}

// Decoder turns a parsed entry value back into the value the cache held.
// Parsed values are generic maps, slices and scalars.
type Decoder func(schema string, v any) (any, error)

// NewSnapshot captures the current state of c.
func NewSnapshot(c *cache.Cache) *Snapshot {
	s := &Snapshot{
		Schemas: make(map[string]map[string]any),
		Aliases: c.Registered(),
		Fields:  c.Fields(),
	}
	for _, schema := range c.Schemas() {
		entries := make(map[string]any)
		for _, name := range c.Names(schema) {
			entries[name], _ = c.Get(schema, name)
		}
		s.Schemas[schema] = entries
	}
	return s
}

// Restore builds a cache holding the snapshot's entries, fields and
// shorthand registrations. Each entry value goes through decode; a nil
// decode keeps the parsed form.
func (s *Snapshot) Restore(decode Decoder) (*cache.Cache, error) {
	c := cache.New()
	for schema, entries := range s.Schemas {
		values := make(map[string]any, len(entries))
		for name, raw := range entries {
			if decode == nil {
				values[name] = raw
				continue
			}
			v, err := decode(schema, raw)
			if err != nil {
				return nil, fmt.Errorf("restore %s %q: %w", schema, name, err)
			}
			values[name] = v
		}
		c = c.Replace(schema, values)
	}
	for key, v := range s.Fields {
		c = c.WithField(key, v)
	}

	var err error
	for alias, ref := range s.Aliases {
		if cache.Identifier(ref.Name) != alias {
			return nil, fmt.Errorf("alias %s does not match %s %q", alias, ref.Schema, ref.Name)
		}
		if c, err = c.Shorthand(cache.Name(ref.Schema, ref.Name)); err != nil {
			return nil, fmt.Errorf("restore alias %s: %w", alias, err)
		}
	}
	return c, nil
}

// ForFormat returns the codec for a format name.
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// ForPath picks the codec from a file extension.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("snapshot %s has no extension", path)
	}
	return ForFormat(ext)
}
