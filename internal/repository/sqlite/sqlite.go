package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"repocache/internal/domain"
	"repocache/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository. Use ":memory:" for a throwaway store.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// An in-memory database lives on a single connection
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		schema_name TEXT NOT NULL,
		name TEXT NOT NULL,
		fields TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (schema_name, name)
	);

	CREATE INDEX IF NOT EXISTS idx_records_schema ON records(schema_name);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Get retrieves a single record by ID
func (r *Repository) Get(ctx context.Context, id string) (*domain.Record, error) {
	var row recordRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE id = ?
	`, id).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	return row.toDomain()
}

// GetByName retrieves a record by schema and fixture name
func (r *Repository) GetByName(ctx context.Context, schema, name string) (*domain.Record, error) {
	var row recordRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE schema_name = ? AND name = ?
	`, schema, name).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	return row.toDomain()
}

// GetPreloaded retrieves a record and, one level deep, the record each of
// assocs references through its AssociationField. A record without a value
// for an association is left without it; a value naming no record is an error.
func (r *Repository) GetPreloaded(ctx context.Context, id string, assocs []string) (*domain.Record, error) {
	rec, err := r.Get(ctx, id)
	if err != nil || rec == nil {
		return rec, err
	}

	for _, assoc := range assocs {
		assocID, ok := rec.AssociationID(assoc)
		if !ok {
			continue
		}
		related, err := r.Get(ctx, assocID)
		if err != nil {
			return nil, fmt.Errorf("failed to preload %s: %w", assoc, err)
		}
		if related == nil {
			return nil, fmt.Errorf("record %s references missing %s %s", id, assoc, assocID)
		}
		if rec.Associations == nil {
			rec.Associations = make(map[string]*domain.Record, len(assocs))
		}
		rec.Associations[assoc] = related
	}

	return rec, nil
}

// Insert stores a new record, assigning an ID and timestamps when unset
func (r *Repository) Insert(ctx context.Context, rec *domain.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	args, err := recordInsertArgs(rec)
	if err != nil {
		return fmt.Errorf("failed to prepare record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert %s %q: %w", rec.Schema, rec.Name, err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
