// Package domain defines the fixture types stored behind the repo cache.
//
// # Records
//
// Record is one row of the fixture store: a schema, a caller-chosen name, a
// bag of fields and, after a preloading read, its associated records. The
// field AssociationField(parent) holds the ID of the parent record. Only the
// parents a Kind declares are associations; other "_id" fields are plain data.
//
// # Kinds
//
// Kind describes how fixtures of a schema are built: the recognized field
// options with their defaults, and the parent schemas that must exist first.
package domain
