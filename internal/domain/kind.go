package domain

import (
	"fmt"
	"maps"
)

// Parent is a record a kind depends on. Building a fixture of the kind
// first ensures a parent fixture exists and links it through
// AssociationField(Schema).
type Parent struct {
	Schema string `json:"schema" yaml:"schema"`
	// Default names the parent fixture used when no option or cache field selects one
	Default string `json:"default" yaml:"default"`
}

// Kind describes how fixtures of one schema are built
type Kind struct {
	Schema string `json:"schema" yaml:"schema"`
	// Defaults lists every recognized field option and its default value
	Defaults map[string]any `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Requires []Parent       `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// Validate checks the kind for structural errors
func (k Kind) Validate() error {
	if k.Schema == "" {
		return fmt.Errorf("kind has no schema")
	}
	seen := make(map[string]bool, len(k.Requires))
	for _, p := range k.Requires {
		if p.Schema == "" {
			return fmt.Errorf("kind %s: parent has no schema", k.Schema)
		}
		if p.Schema == k.Schema {
			return fmt.Errorf("kind %s: requires itself", k.Schema)
		}
		if seen[p.Schema] {
			return fmt.Errorf("kind %s: parent %s listed twice", k.Schema, p.Schema)
		}
		seen[p.Schema] = true
		if _, clash := k.Defaults[p.Schema]; clash {
			return fmt.Errorf("kind %s: field %s shadows parent option", k.Schema, p.Schema)
		}
	}
	return nil
}

// Options returns the recognized option set: field defaults plus one option
// per parent naming the parent fixture. parentDefault may override a
// parent's Default and returns "" to keep it.
func (k Kind) Options(parentDefault func(schema string) string) map[string]any {
	opts := maps.Clone(k.Defaults)
	if opts == nil {
		opts = make(map[string]any, len(k.Requires))
	}
	for _, p := range k.Requires {
		name := p.Default
		if parentDefault != nil {
			if override := parentDefault(p.Schema); override != "" {
				name = override
			}
		}
		opts[p.Schema] = name
	}
	return opts
}

// ParentSchemas lists the schemas of the declared parents in order. These are
// the only associations a record of the kind carries.
func (k Kind) ParentSchemas() []string {
	schemas := make([]string, 0, len(k.Requires))
	for _, p := range k.Requires {
		schemas = append(schemas, p.Schema)
	}
	return schemas
}
