// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textindex

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Writer builds a new index inside one transaction. Nothing is visible to
// readers until Commit. A file-backed index is written to a temporary file
// next to the destination and renamed into place on Commit, so a failed or
// abandoned build never leaves a partial index at the destination path.
type Writer struct {
	db       *sql.DB
	tx       *sql.Tx
	addDoc   *sql.Stmt
	addField *sql.Stmt

	path    string // destination, empty for in-memory
	tmpPath string
	memName string

	docs int
}

// Create starts a new index. An empty path creates an in-memory index that
// lives until the Reader returned by Commit is closed.
func Create(ctx context.Context, path string) (*Writer, error) {
	w := &Writer{path: path}

	var dsn string
	if path == "" {
		w.memName = "textindex-" + uuid.NewString()
		dsn = memoryDSN(w.memName, false)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
		w.tmpPath = fmt.Sprintf("%s.build-%s", path, uuid.NewString())
		dsn = fileDSN(w.tmpPath, "_foreign_keys=on")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	w.db = db

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		w.cleanup()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	w.tx = tx

	if err := createSchema(ctx, tx); err != nil {
		w.cleanup()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if w.addDoc, err = tx.PrepareContext(ctx, `INSERT INTO documents DEFAULT VALUES`); err != nil {
		w.cleanup()
		return nil, fmt.Errorf("preparing document insert: %w", err)
	}
	if w.addField, err = tx.PrepareContext(ctx,
		`INSERT INTO fields (doc_id, ord, name, value) VALUES (?, ?, ?, ?)`); err != nil {
		w.cleanup()
		return nil, fmt.Errorf("preparing field insert: %w", err)
	}

	return w, nil
}

// Add stores doc and returns its id.
func (w *Writer) Add(ctx context.Context, doc Document) (DocID, error) {
	if w.tx == nil {
		return 0, fmt.Errorf("index writer is closed")
	}

	res, err := w.addDoc.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("inserting document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading document id: %w", err)
	}

	for ord, fv := range doc {
		if _, err := w.addField.ExecContext(ctx, id, ord, fv.Name, fv.Value); err != nil {
			return 0, fmt.Errorf("inserting field %s of document %d: %w", fv.Name, id, err)
		}
	}

	w.docs++
	return DocID(id), nil
}

// SetMeta records a key/value pair describing the build.
func (w *Writer) SetMeta(ctx context.Context, key, value string) error {
	if w.tx == nil {
		return fmt.Errorf("index writer is closed")
	}
	_, err := w.tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// Len returns the number of documents added so far.
func (w *Writer) Len() int {
	return w.docs
}

// Commit makes the index durable and reopens it read-only. The writer
// cannot be used afterwards.
func (w *Writer) Commit(ctx context.Context) (*Reader, error) {
	if w.tx == nil {
		return nil, fmt.Errorf("index writer is closed")
	}

	w.addDoc.Close()
	w.addField.Close()
	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		w.cleanup()
		return nil, fmt.Errorf("committing index: %w", err)
	}

	if w.memName != "" {
		// The in-memory database is dropped when its last connection
		// closes. Pin one writer connection for the reader's lifetime.
		keep, err := w.db.Conn(ctx)
		if err != nil {
			w.cleanup()
			return nil, fmt.Errorf("pinning in-memory index: %w", err)
		}
		r, err := openDSN(ctx, memoryDSN(w.memName, true))
		if err != nil {
			keep.Close()
			w.cleanup()
			return nil, err
		}
		r.keepConn = keep
		r.keepDB = w.db
		return r, nil
	}

	if err := w.db.Close(); err != nil {
		w.cleanup()
		return nil, fmt.Errorf("closing index after build: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return nil, fmt.Errorf("moving index into place: %w", err)
	}

	return Open(ctx, w.path)
}

// Abort discards the build. It is safe to call after Commit.
func (w *Writer) Abort() error {
	if w.tx == nil {
		return nil
	}
	w.cleanup()
	return nil
}

func (w *Writer) cleanup() {
	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}
	if w.db != nil {
		w.db.Close()
	}
	if w.tmpPath != "" {
		os.Remove(w.tmpPath)
	}
}

// fileDSN builds a SQLite URI for path. The path is percent-encoded so that
// '#', '?' and '%' in a file name are not read as URI delimiters.
func fileDSN(path, query string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + query
}

func memoryDSN(name string, readOnly bool) string {
	dsn := "file:" + name + "?mode=memory&cache=shared"
	if readOnly {
		dsn += "&_query_only=1"
	}
	return dsn
}
