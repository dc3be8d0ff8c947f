// Package cache implements the repo cache: an in-memory, persistent (copy on
// write) description of the rows a test has inserted into its backing store.
//
// # Partitions
//
// A Cache keeps entries grouped by schema name and entry name. Alongside the
// schema partitions it keeps a shorthand registry mapping (schema, name)
// pairs to alias identifiers, and a set of caller-seeded top-level fields
// such as a default foreign key.
//
// # Persistence
//
// Every operation returns a new *Cache and leaves its receiver untouched, so
// callers thread the value through a sequence of calls:
//
//	c := cache.New().Put("animal", "bossie", row)
//	c, err := c.Shorthand(cache.Schema("animal"))
//	v, ok := c.Alias("bossie")
//
// # Shorthand
//
// Aliases are resolved on read through the registry. An alias therefore
// always reports the current schema entry; Put, Replace and LoadFully never
// need to re-sync it.
//
// # Batches
//
// Shorthand and LoadFully resolve and validate their whole target before
// touching anything. A failure anywhere in the batch returns an error and no
// cache value; the receiver is still valid.
package cache
