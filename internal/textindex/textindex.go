// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textindex is a small document index on SQLite. A document is an
// ordered list of (field, value) pairs. The index answers exact-term
// lookups restricted to named fields and returns stored field values per
// document. There is no tokenization and no scoring.
//
// An index is written once through a Writer and then read through a
// read-only Reader that is safe for concurrent use.
package textindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName    = "sqlite3"
	schemaVersion = "1"

	// MetaSchemaVersion is the meta key holding the schema version.
	MetaSchemaVersion = "schema_version"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// DocID identifies a document. Ids increase in insertion order.
type DocID int64

// FieldValue is one stored value of one field.
type FieldValue struct {
	Name  string
	Value string
}

// Document is the ordered list of values stored for one record. Values of
// the same field keep their relative order.
type Document []FieldValue

// StoredFields groups a document's values by field name.
type StoredFields map[string][]string

func createSchema(ctx context.Context, tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT
		)`,
		`CREATE TABLE fields (
			doc_id INTEGER NOT NULL REFERENCES documents(id),
			ord INTEGER NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (doc_id, ord)
		)`,
		`CREATE INDEX idx_fields_term ON fields(name, value, doc_id)`,
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)`, MetaSchemaVersion, schemaVersion,
	); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}
