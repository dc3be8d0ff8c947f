package cache

import (
	"fmt"

	"repocache/internal/options"
)

type targetShape int

const (
	shapeNone targetShape = iota
	shapeSchemas
	shapeSchema
	shapeNames
	shapeName
)

// Target selects the (schema, name) pairs a batch operation acts on.
type Target struct {
	shape   targetShape
	schemas []string
	names   []string
}

// Schemas targets every entry of each listed schema.
func Schemas(schemas ...string) Target {
	return Target{shape: shapeSchemas, schemas: schemas}
}

// Schema targets every entry of schema.
func Schema(schema string) Target {
	return Target{shape: shapeSchema, schemas: []string{schema}}
}

// Names targets the listed entries of schema. Each must exist.
func Names(schema string, names ...string) Target {
	return Target{shape: shapeNames, schemas: []string{schema}, names: names}
}

// Name targets a single entry of schema, which must exist.
func Name(schema, name string) Target {
	return Target{shape: shapeName, schemas: []string{schema}, names: []string{name}}
}

func (t Target) String() string {
	switch t.shape {
	case shapeSchemas:
		return fmt.Sprintf("schemas %v", t.schemas)
	case shapeSchema:
		return fmt.Sprintf("schema %s", t.schemas[0])
	case shapeNames, shapeName:
		return fmt.Sprintf("schema %s names %v", t.schemas[0], t.names)
	default:
		return "empty target"
	}
}

var targetDefaults = map[string]any{
	"schemas": nil,
	"schema":  nil,
	"names":   nil,
	"name":    nil,
}

// TargetFromOptions builds a Target from a dynamic option map with the keys
// schemas, schema, names and name. Unknown keys fail with
// options.ErrUnknownOption; combinations other than the four Target shapes
// fail with ErrInvalidTarget.
func TargetFromOptions(opts map[string]any) (Target, error) {
	merged, err := options.Combine(opts, targetDefaults)
	if err != nil {
		return Target{}, fmt.Errorf("target options: %w", err)
	}

	schemas, err := asStrings(merged["schemas"])
	if err != nil {
		return Target{}, fmt.Errorf("%w: schemas: %v", ErrInvalidTarget, err)
	}
	names, err := asStrings(merged["names"])
	if err != nil {
		return Target{}, fmt.Errorf("%w: names: %v", ErrInvalidTarget, err)
	}
	schema, err := asString(merged["schema"])
	if err != nil {
		return Target{}, fmt.Errorf("%w: schema: %v", ErrInvalidTarget, err)
	}
	name, err := asString(merged["name"])
	if err != nil {
		return Target{}, fmt.Errorf("%w: name: %v", ErrInvalidTarget, err)
	}

	hasSchemas := merged["schemas"] != nil
	hasNames := merged["names"] != nil
	hasSchema := merged["schema"] != nil
	hasName := merged["name"] != nil

	var t Target
	switch {
	case hasSchemas && !hasSchema && !hasNames && !hasName:
		t = Schemas(schemas...)
	case hasSchema && !hasSchemas && !hasNames && !hasName:
		t = Schema(schema)
	case hasSchema && hasNames && !hasSchemas && !hasName:
		t = Names(schema, names...)
	case hasSchema && hasName && !hasSchemas && !hasNames:
		t = Name(schema, name)
	default:
		return Target{}, fmt.Errorf("%w: options %v do not form a target", ErrInvalidTarget, options.Keys(opts))
	}

	if err := t.validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

func (t Target) validate() error {
	if t.shape == shapeNone {
		return fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}
	for _, s := range t.schemas {
		if s == "" {
			return fmt.Errorf("%w: empty schema name", ErrInvalidTarget)
		}
	}
	return nil
}

// resolved is one selected entry and its current value.
type resolved struct {
	entryKey
	value any
}

// resolve expands t against c in caller order. Whole-schema shapes over
// absent or empty schemas select nothing; a missing named entry is an error.
// Each entry is selected at most once.
func (t Target) resolve(c *Cache) ([]resolved, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	seen := make(map[entryKey]bool)
	var out []resolved
	add := func(schema, name string, value any) {
		k := entryKey{schema: schema, name: name}
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, resolved{entryKey: k, value: value})
	}

	switch t.shape {
	case shapeSchemas, shapeSchema:
		for _, schema := range t.schemas {
			for _, name := range c.Names(schema) {
				v, _ := c.Get(schema, name)
				add(schema, name, v)
			}
		}
	case shapeNames, shapeName:
		schema := t.schemas[0]
		for _, name := range t.names {
			v, ok := c.Get(schema, name)
			if !ok {
				return nil, &MissingEntryError{Schema: schema, Name: name}
			}
			add(schema, name, v)
		}
	}

	return out, nil
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func asStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}
