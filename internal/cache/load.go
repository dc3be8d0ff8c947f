package cache

import (
	"context"
	"fmt"
)

// Loader re-reads one entry from the backing store, usually with deeper
// associations populated. It is called with the entry's schema and current value.
type Loader func(ctx context.Context, schema string, current any) (any, error)

// LoadFully reloads every entry selected by t through load and stores the
// results in one step. Registered aliases report the reloaded values. If
// resolution or any load fails, no cache value is returned.
func (c *Cache) LoadFully(ctx context.Context, load Loader, t Target) (*Cache, error) {
	entries, err := t.resolve(c)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]map[string]any)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, err := load(ctx, e.schema, e.value)
		if err != nil {
			return nil, fmt.Errorf("load %s %q: %w", e.schema, e.name, err)
		}

		if updates[e.schema] == nil {
			updates[e.schema] = make(map[string]any)
		}
		updates[e.schema][e.name] = value
	}

	if len(updates) == 0 {
		return c, nil
	}
	return c.merge(updates), nil
}

// Step is a singular, idempotent creation operation for one name.
type Step func(ctx context.Context, c *Cache, name string) (*Cache, error)

// Each threads c through step once per name, in order. It is the plural form
// of any singular builder.
func Each(ctx context.Context, c *Cache, names []string, step Step) (*Cache, error) {
	for _, name := range names {
		next, err := step(ctx, c, name)
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}
