package cache

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Producer creates the value for an absent entry, typically by inserting a
// row into the backing store.
type Producer func(ctx context.Context) (any, error)

// entryKey identifies one entry.
type entryKey struct {
	schema string
	name   string
}

// Cache is an immutable repo cache value. The zero value is not usable; call New.
type Cache struct {
	schemas  map[string]map[string]any
	registry map[entryKey]string
	aliases  map[string]entryKey
	fields   map[string]any
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		schemas:  map[string]map[string]any{},
		registry: map[entryKey]string{},
		aliases:  map[string]entryKey{},
		fields:   map[string]any{},
	}
}

// shallow copies the struct; maps stay shared until a writer clones the one it changes.
func (c *Cache) shallow() *Cache {
	next := *c
	return &next
}

// Get returns the value stored under schema and name.
func (c *Cache) Get(schema, name string) (any, bool) {
	v, ok := c.schemas[schema][name]
	return v, ok
}

// Has reports whether schema contains name.
func (c *Cache) Has(schema, name string) bool {
	_, ok := c.Get(schema, name)
	return ok
}

// Put stores value under schema and name, overwriting any previous entry.
// Only the cache structure is merged: the entry itself is replaced whole and
// never deep-merged with the old value, even when both are maps, so
// Get(Put(schema, name, v)) returns v itself.
func (c *Cache) Put(schema, name string, value any) *Cache {
	return c.Replace(schema, map[string]any{name: value})
}

// Replace stores every name/value pair into schema in a single step.
func (c *Cache) Replace(schema string, pairs map[string]any) *Cache {
	return c.merge(map[string]map[string]any{schema: pairs})
}

// merge stores updates (schema -> name -> value) into a new cache value.
func (c *Cache) merge(updates map[string]map[string]any) *Cache {
	next := c.shallow()
	next.schemas = maps.Clone(c.schemas)
	if next.schemas == nil {
		next.schemas = make(map[string]map[string]any, len(updates))
	}

	for schema, pairs := range updates {
		entries := maps.Clone(next.schemas[schema])
		if entries == nil {
			entries = make(map[string]any, len(pairs))
		}
		maps.Copy(entries, pairs)
		next.schemas[schema] = entries
	}

	return next
}

// CreateIfNeeded returns c unchanged when schema already holds name. Otherwise
// it calls produce exactly once and stores the result. On a producer error no
// cache value is returned.
func (c *Cache) CreateIfNeeded(ctx context.Context, schema, name string, produce Producer) (*Cache, error) {
	if c.Has(schema, name) {
		return c, nil
	}

	value, err := produce(ctx)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", schema, name, err)
	}

	return c.Put(schema, name, value), nil
}

// Names returns the sorted entry names of schema. An absent schema has none.
func (c *Cache) Names(schema string) []string {
	return slices.Sorted(maps.Keys(c.schemas[schema]))
}

// Schemas returns the sorted names of all schema partitions that hold at
// least one entry.
func (c *Cache) Schemas() []string {
	names := make([]string, 0, len(c.schemas))
	for schema, entries := range c.schemas {
		if len(entries) > 0 {
			names = append(names, schema)
		}
	}
	slices.Sort(names)
	return names
}

// WithField seeds a top-level field, such as a default foreign key.
func (c *Cache) WithField(key string, value any) *Cache {
	next := c.shallow()
	next.fields = maps.Clone(c.fields)
	if next.fields == nil {
		next.fields = make(map[string]any, 1)
	}
	next.fields[key] = value
	return next
}

// Field returns a top-level field set with WithField.
func (c *Cache) Field(key string) (any, bool) {
	v, ok := c.fields[key]
	return v, ok
}

// Fields returns a copy of all top-level fields.
func (c *Cache) Fields() map[string]any {
	out := maps.Clone(c.fields)
	if out == nil {
		out = map[string]any{}
	}
	return out
}
