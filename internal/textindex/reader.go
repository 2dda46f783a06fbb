// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// Reader answers lookups against a committed index. It never writes and
// is safe for concurrent use by multiple goroutines.
type Reader struct {
	db *sql.DB

	// Set for in-memory indexes: the writer connection that keeps the
	// shared-cache database alive.
	keepConn *sql.Conn
	keepDB   *sql.DB
}

// Open opens a committed, file-backed index read-only.
func Open(ctx context.Context, path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return openDSN(ctx, fileDSN(path, "mode=ro&_query_only=1"))
}

func openDSN(ctx context.Context, dsn string) (*Reader, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var version string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, MetaSchemaVersion,
	).Scan(&version)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading index schema version: %w", err)
	}
	if version != schemaVersion {
		db.Close()
		return nil, fmt.Errorf("index schema version %s, want %s", version, schemaVersion)
	}

	return &Reader{db: db}, nil
}

// Close releases the database handles. Closing the reader of an in-memory
// index discards the index.
func (r *Reader) Close() error {
	err := r.db.Close()
	if r.keepConn != nil {
		r.keepConn.Close()
	}
	if r.keepDB != nil {
		r.keepDB.Close()
	}
	return err
}

// Search returns the documents whose field contains exactly term, in id order.
func (r *Reader) Search(ctx context.Context, field, term string) ([]DocID, error) {
	return r.SearchAny(ctx, []string{field}, term)
}

// SearchAny returns the documents where at least one of fields contains
// exactly term. Each document appears once, in id order.
func (r *Reader) SearchAny(ctx context.Context, fields []string, term string) ([]DocID, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(fields)+1)
	args = append(args, term)
	for _, f := range fields {
		args = append(args, f)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(fields)), ",")

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT doc_id FROM fields
		 WHERE value = ? AND name IN (`+placeholders+`)
		 ORDER BY doc_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	var ids []DocID
	for rows.Next() {
		var id DocID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// StoredFields returns every value stored for document id, grouped by
// field in insertion order. It returns ErrNotFound for unknown ids.
func (r *Reader) StoredFields(ctx context.Context, id DocID) (StoredFields, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, value FROM fields WHERE doc_id = ? ORDER BY ord`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("reading document %d: %w", id, err)
	}
	defer rows.Close()

	fields := make(StoredFields)
	n := 0
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		fields[name] = append(fields[name], value)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM documents WHERE id = ?)`, int64(id),
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking document %d: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
	}
	return fields, nil
}

// Documents calls fn for every document in id order. Iteration stops at
// the first error fn returns.
func (r *Reader) Documents(ctx context.Context, fn func(DocID, StoredFields) error) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, f.name, f.value
		 FROM documents d
		 LEFT JOIN fields f ON f.doc_id = d.id
		 ORDER BY d.id, f.ord`)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var (
		cur    DocID
		fields StoredFields
	)
	for rows.Next() {
		var (
			id    DocID
			name  sql.NullString
			value sql.NullString
		)
		if err := rows.Scan(&id, &name, &value); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
		if fields != nil && id != cur {
			if err := fn(cur, fields); err != nil {
				return err
			}
			fields = nil
		}
		if fields == nil {
			cur = id
			fields = make(StoredFields)
		}
		if name.Valid {
			fields[name.String] = append(fields[name.String], value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if fields != nil {
		return fn(cur, fields)
	}
	return nil
}

// Count returns the number of documents.
func (r *Reader) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Meta returns every build metadata entry.
func (r *Reader) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}
