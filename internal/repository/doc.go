// Package repository defines the data access interface for fixture records.
//
// This package provides the persistence abstraction the repo cache mirrors.
// The actual implementation is in the sqlite subpackage.
//
// # Repository Interface
//
// The Repository interface covers inserting records and reading them back by
// ID or by (schema, name). Reads return (nil, nil) when a record does not
// exist. Fixture rows are write-once; the builder reuses an existing row
// rather than rewriting it.
//
// # Preloading
//
// GetPreloaded follows the named associations one level and fills the
// record's Associations. The caller names them, normally the parents its
// Kind declares, so unrelated fields ending in "_id" are never followed. It
// backs the loader used to fully load cache entries.
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository
