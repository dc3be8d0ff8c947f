package cache

import (
	"maps"
	"strings"
)

// Identifier derives the alias identifier for an entry name: lower case,
// spaces replaced by underscores.
func Identifier(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Shorthand registers an alias for every entry selected by t. Registration is
// permanent for the cache value chain and idempotent. When two names share an
// identifier the later registration owns it.
func (c *Cache) Shorthand(t Target) (*Cache, error) {
	entries, err := t.resolve(c)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return c, nil
	}

	next := c.shallow()
	next.registry = maps.Clone(c.registry)
	next.aliases = maps.Clone(c.aliases)
	if next.registry == nil {
		next.registry = make(map[entryKey]string, len(entries))
	}
	if next.aliases == nil {
		next.aliases = make(map[string]entryKey, len(entries))
	}

	for _, e := range entries {
		alias := Identifier(e.name)
		if prev, ok := next.aliases[alias]; ok && prev != e.entryKey {
			delete(next.registry, prev)
		}
		if old, ok := next.registry[e.entryKey]; ok && old != alias {
			delete(next.aliases, old)
		}
		next.registry[e.entryKey] = alias
		next.aliases[alias] = e.entryKey
	}

	return next, nil
}

// Alias returns the current value of the entry registered under alias.
func (c *Cache) Alias(alias string) (any, bool) {
	k, ok := c.aliases[alias]
	if !ok {
		return nil, false
	}
	return c.Get(k.schema, k.name)
}

// AliasOf returns the alias registered for schema and name, if any.
func (c *Cache) AliasOf(schema, name string) (string, bool) {
	alias, ok := c.registry[entryKey{schema: schema, name: name}]
	return alias, ok
}

// Aliases returns every registered alias with its current value.
func (c *Cache) Aliases() map[string]any {
	out := make(map[string]any, len(c.aliases))
	for alias := range c.aliases {
		if v, ok := c.Alias(alias); ok {
			out[alias] = v
		}
	}
	return out
}

// Ref names one entry.
type Ref struct {
	Schema string `json:"schema" yaml:"schema"`
	Name   string `json:"name" yaml:"name"`
}

// Registered returns every alias with the entry it resolves to.
func (c *Cache) Registered() map[string]Ref {
	out := make(map[string]Ref, len(c.aliases))
	for alias, k := range c.aliases {
		out[alias] = Ref{Schema: k.schema, Name: k.name}
	}
	return out
}
