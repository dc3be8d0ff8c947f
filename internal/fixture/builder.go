// Package fixture builds test fixtures into a repository and records them in
// a repo cache.
package fixture

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"repocache/internal/cache"
	"repocache/internal/domain"
	"repocache/internal/options"
	"repocache/internal/repository"
)

// Builder creates fixtures of registered kinds, cascading to their parents.
type Builder struct {
	repo  repository.Repository
	kinds map[string]domain.Kind
	log   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for fixture events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a builder for kinds. Every parent must itself be a registered
// kind and the parent graph must be acyclic.
func New(repo repository.Repository, kinds []domain.Kind, opts ...Option) (*Builder, error) {
	b := &Builder{
		repo:  repo,
		kinds: make(map[string]domain.Kind, len(kinds)),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, k := range kinds {
		if err := k.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b.kinds[k.Schema]; dup {
			return nil, fmt.Errorf("kind %s registered twice", k.Schema)
		}
		b.kinds[k.Schema] = k
	}

	for _, k := range kinds {
		for _, p := range k.Requires {
			if _, ok := b.kinds[p.Schema]; !ok {
				return nil, fmt.Errorf("kind %s requires unknown kind %s", k.Schema, p.Schema)
			}
		}
	}
	if err := b.checkCycles(); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Builder) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(b.kinds))

	var visit func(schema string, path []string) error
	visit = func(schema string, path []string) error {
		switch state[schema] {
		case visiting:
			return fmt.Errorf("kinds form a cycle: %v", append(path, schema))
		case done:
			return nil
		}
		state[schema] = visiting
		for _, p := range b.kinds[schema].Requires {
			if err := visit(p.Schema, append(path, schema)); err != nil {
				return err
			}
		}
		state[schema] = done
		return nil
	}

	for schema := range b.kinds {
		if err := visit(schema, nil); err != nil {
			return err
		}
	}
	return nil
}

// Add ensures the fixture schema/name exists and is recorded in c. When c
// already holds it, c is returned unchanged and opts are ignored. Otherwise
// opts are checked against the kind's recognized options, parents are added
// first, and the record is inserted. A row already in the store under the
// same schema and name is reused as stored, so a persistent database can be
// built into again from an empty cache.
//
// The cached value is always the record as read back from the store.
//
// A parent's fixture name comes from opts, then from a cache field named
// after the parent schema, then from the kind's declared default.
func (b *Builder) Add(ctx context.Context, c *cache.Cache, schema, name string, opts map[string]any) (*cache.Cache, error) {
	if c.Has(schema, name) {
		return c, nil
	}

	kind, ok := b.kinds[schema]
	if !ok {
		return nil, fmt.Errorf("no fixture kind for schema %s", schema)
	}

	fields, err := options.Combine(opts, kind.Options(func(parent string) string {
		v, _ := c.Field(parent)
		s, _ := v.(string)
		return s
	}))
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", schema, name, err)
	}

	for _, p := range kind.Requires {
		parentName, _ := fields[p.Schema].(string)
		if parentName == "" {
			return nil, fmt.Errorf("%s %q: no %s fixture named", schema, name, p.Schema)
		}
		delete(fields, p.Schema)

		if c, err = b.Add(ctx, c, p.Schema, parentName, nil); err != nil {
			return nil, err
		}
		v, _ := c.Get(p.Schema, parentName)
		parent, ok := v.(*domain.Record)
		if !ok {
			return nil, fmt.Errorf("%s %q: cached %s %q is %T, not a record", schema, name, p.Schema, parentName, v)
		}
		fields[domain.AssociationField(p.Schema)] = parent.ID
	}

	return c.CreateIfNeeded(ctx, schema, name, func(ctx context.Context) (any, error) {
		existing, err := b.repo.GetByName(ctx, schema, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			b.log.Debug("fixture reused", "schema", schema, "name", name, "id", existing.ID)
			return existing, nil
		}

		rec := domain.NewRecord(schema, name)
		rec.Fields = fields
		if err := b.repo.Insert(ctx, rec); err != nil {
			return nil, err
		}
		stored, err := b.repo.Get(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, fmt.Errorf("%s %q vanished after insert", schema, name)
		}
		b.log.Debug("fixture created", "schema", schema, "name", name, "id", stored.ID)
		return stored, nil
	})
}

// AddAll adds every named fixture of schema with default options.
func (b *Builder) AddAll(ctx context.Context, c *cache.Cache, schema string, names []string) (*cache.Cache, error) {
	return cache.Each(ctx, c, names, func(ctx context.Context, c *cache.Cache, name string) (*cache.Cache, error) {
		return b.Add(ctx, c, schema, name, nil)
	})
}

// Loader returns a cache.Loader that re-reads records with the parents their
// kind declares preloaded.
func (b *Builder) Loader() cache.Loader {
	return func(ctx context.Context, schema string, current any) (any, error) {
		rec, ok := current.(*domain.Record)
		if !ok {
			return nil, fmt.Errorf("%s entry is %T, not a record", schema, current)
		}
		kind, ok := b.kinds[schema]
		if !ok {
			return nil, fmt.Errorf("no fixture kind for schema %s", schema)
		}

		loaded, err := b.repo.GetPreloaded(ctx, rec.ID, kind.ParentSchemas())
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, fmt.Errorf("%s %q is no longer in the store", schema, rec.Name)
		}

		b.log.Debug("fixture loaded", "schema", schema, "name", rec.Name, "associations", len(loaded.Associations))
		return loaded, nil
	}
}

// LoadFully reloads the fixtures selected by t with associations preloaded.
func (b *Builder) LoadFully(ctx context.Context, c *cache.Cache, t cache.Target) (*cache.Cache, error) {
	return c.LoadFully(ctx, b.Loader(), t)
}
