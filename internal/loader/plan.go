// Package loader reads fixture plans: the kinds a test suite uses, the
// fixtures to build, and the shorthand and reload targets to apply.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"repocache/internal/cache"
	"repocache/internal/domain"
	"repocache/internal/fixture"
	"repocache/internal/options"
)

// Plan represents a fixture plan file
type Plan struct {
	Kinds []domain.Kind `yaml:"kinds" json:"kinds"`
	// Fields seeds top-level cache fields, e.g. a default parent name
	Fields    map[string]any   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Fixtures  []FixtureSpec    `yaml:"fixtures" json:"fixtures"`
	Shorthand []map[string]any `yaml:"shorthand,omitempty" json:"shorthand,omitempty"`
	LoadFully []map[string]any `yaml:"load_fully,omitempty" json:"load_fully,omitempty"`
}

// FixtureSpec names one fixture (Name, with Options) or several (Names)
type FixtureSpec struct {
	Schema  string         `yaml:"schema" json:"schema"`
	Name    string         `yaml:"name,omitempty" json:"name,omitempty"`
	Names   []string       `yaml:"names,omitempty" json:"names,omitempty"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

// Load reads a plan, choosing the parser by file extension. JSON files may
// carry comments and trailing commas.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json", ".jsonc", ".hujson":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported plan format %q", filepath.Ext(path))
	}
}

// ParseYAML parses a plan from YAML bytes
func ParseYAML(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ParseJSON parses a plan from JSON with comments
func ParseJSON(data []byte) (*Plan, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(standardized, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks fixture entries and target option maps
func (p *Plan) Validate() error {
	for i, f := range p.Fixtures {
		if f.Schema == "" {
			return fmt.Errorf("fixture %d: missing schema", i)
		}
		if (f.Name == "") == (len(f.Names) == 0) {
			return fmt.Errorf("fixture %d (%s): set exactly one of name or names", i, f.Schema)
		}
		if len(f.Names) > 0 && len(f.Options) > 0 {
			return fmt.Errorf("fixture %d (%s): options need a single name", i, f.Schema)
		}
	}
	if _, err := targets(p.Shorthand); err != nil {
		return fmt.Errorf("shorthand: %w", err)
	}
	if _, err := targets(p.LoadFully); err != nil {
		return fmt.Errorf("load_fully: %w", err)
	}
	return nil
}

func targets(opts []map[string]any) ([]cache.Target, error) {
	out := make([]cache.Target, 0, len(opts))
	for i, o := range opts {
		t, err := cache.TargetFromOptions(o)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Apply builds the plan into c: seeds fields, adds fixtures in order, then
// installs shorthand and fully loads the requested targets.
func (p *Plan) Apply(ctx context.Context, b *fixture.Builder, c *cache.Cache) (*cache.Cache, error) {
	for _, key := range options.Keys(p.Fields) {
		c = c.WithField(key, p.Fields[key])
	}

	var err error
	for _, f := range p.Fixtures {
		if f.Name != "" {
			c, err = b.Add(ctx, c, f.Schema, f.Name, f.Options)
		} else {
			c, err = b.AddAll(ctx, c, f.Schema, f.Names)
		}
		if err != nil {
			return nil, err
		}
	}

	shorthand, err := targets(p.Shorthand)
	if err != nil {
		return nil, err
	}
	for _, t := range shorthand {
		if c, err = c.Shorthand(t); err != nil {
			return nil, fmt.Errorf("shorthand %s: %w", t, err)
		}
	}

	reload, err := targets(p.LoadFully)
	if err != nil {
		return nil, err
	}
	for _, t := range reload {
		if c, err = b.LoadFully(ctx, c, t); err != nil {
			return nil, fmt.Errorf("load %s: %w", t, err)
		}
	}

	return c, nil
}
