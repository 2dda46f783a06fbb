// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds concept records from a thesaurus graph and stores
// them in a text index, one document per concept. Every label role and
// relation type is a separate field; the concept URI is the key field.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/textindex"
	"github.com/pdiddy/skos-index/internal/vocab"
	"github.com/pdiddy/skos-index/pkg/types"
)

// ErrConceptNotFound is returned when no record has the requested URI.
var ErrConceptNotFound = errors.New("concept not found")

// Build metadata keys.
const (
	MetaBuildID   = "build_id"
	MetaSource    = "source"
	MetaLanguages = "languages"
	MetaBuiltAt   = "built_at"
	MetaConcepts  = "concepts"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Path is the index file; empty builds an in-memory index.
	Path string

	// Languages is the label language allow-list; empty keeps all.
	Languages []string

	// Meta is recorded in the index alongside the records.
	Meta map[string]string

	Logger *slog.Logger
}

// Build writes one record per skos:Concept subject of g, commits, and
// returns the reopened read-only store. Per-item problems are added to
// report; any storage error aborts the build and nothing is left behind.
func Build(ctx context.Context, g *graph.Graph, opts BuildOptions, report *BuildReport) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if report == nil {
		report = &BuildReport{}
	}

	fields := types.NewFieldTable()
	builder := NewBuilder(opts.Languages, report, logger)

	w, err := textindex.Create(ctx, opts.Path)
	if err != nil {
		return nil, err
	}
	defer w.Abort()

	for _, subject := range g.SubjectsOfType(vocab.SKOSConcept) {
		c, ok := builder.Concept(g, subject)
		if !ok {
			continue
		}
		doc, err := document(fields, c)
		if err != nil {
			return nil, err
		}
		if _, err := w.Add(ctx, doc); err != nil {
			return nil, fmt.Errorf("indexing concept %s: %w", c.URI, err)
		}
	}
	report.Concepts = w.Len()

	for k, v := range opts.Meta {
		if err := w.SetMeta(ctx, k, v); err != nil {
			return nil, err
		}
	}
	if err := w.SetMeta(ctx, MetaConcepts, fmt.Sprint(w.Len())); err != nil {
		return nil, err
	}

	r, err := w.Commit(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("index committed", "concepts", report.Concepts, "path", opts.Path)
	return newStore(r, fields, logger), nil
}

// document flattens c into field values: the URI first, then labels in
// role order, then edges in relation order.
func document(fields *types.FieldTable, c *types.Concept) (textindex.Document, error) {
	uriField, err := fields.Name(types.FieldURI)
	if err != nil {
		return nil, err
	}
	doc := textindex.Document{{Name: uriField, Value: c.URI}}

	for _, role := range types.LabelRoles() {
		name, err := fields.Name(role)
		if err != nil {
			return nil, err
		}
		for _, v := range c.Labels[role] {
			doc = append(doc, textindex.FieldValue{Name: name, Value: v})
		}
	}
	for _, rel := range types.Relations() {
		name, err := fields.Name(rel)
		if err != nil {
			return nil, err
		}
		for _, v := range c.Relations[rel] {
			doc = append(doc, textindex.FieldValue{Name: name, Value: v})
		}
	}
	return doc, nil
}

// Store is a read-only view of a built index. It is safe for concurrent use.
type Store struct {
	r           *textindex.Reader
	fields      *types.FieldTable
	uriField    string
	labelFields []string
	logger      *slog.Logger
}

// Open opens a persisted index read-only.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r, err := textindex.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return newStore(r, types.NewFieldTable(), logger), nil
}

func newStore(r *textindex.Reader, fields *types.FieldTable, logger *slog.Logger) *Store {
	s := &Store{r: r, fields: fields, logger: logger}
	s.uriField, _ = fields.Name(types.FieldURI)
	for _, role := range types.LabelRoles() {
		name, _ := fields.Name(role)
		s.labelFields = append(s.labelFields, name)
	}
	return s
}

// Close releases the index. An in-memory index is discarded.
func (s *Store) Close() error {
	return s.r.Close()
}

// Lookup returns the URIs of concepts whose field f contains exactly term,
// in build order. The term is compared as given; callers normalize it.
func (s *Store) Lookup(ctx context.Context, f types.Field, term string) ([]string, error) {
	name, err := s.fields.Name(f)
	if err != nil {
		return nil, err
	}
	ids, err := s.r.Search(ctx, name, term)
	if err != nil {
		return nil, err
	}
	return s.uris(ctx, ids)
}

// LookupLabel returns the URIs of concepts having term as a label of any
// role, each once, in build order.
func (s *Store) LookupLabel(ctx context.Context, term string) ([]string, error) {
	ids, err := s.r.SearchAny(ctx, s.labelFields, term)
	if err != nil {
		return nil, err
	}
	return s.uris(ctx, ids)
}

func (s *Store) uris(ctx context.Context, ids []textindex.DocID) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		stored, err := s.r.StoredFields(ctx, id)
		if err != nil {
			return nil, err
		}
		if v := stored[s.uriField]; len(v) > 0 {
			out = append(out, v[0])
		}
	}
	return out, nil
}

// Concept returns the record stored for uri, or ErrConceptNotFound.
func (s *Store) Concept(ctx context.Context, uri string) (*types.Concept, error) {
	ids, err := s.r.Search(ctx, s.uriField, uri)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, uri)
	}
	stored, err := s.r.StoredFields(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	return s.decode(stored), nil
}

// Concepts calls fn for every record in build order.
func (s *Store) Concepts(ctx context.Context, fn func(*types.Concept) error) error {
	return s.r.Documents(ctx, func(_ textindex.DocID, stored textindex.StoredFields) error {
		return fn(s.decode(stored))
	})
}

// Count returns the number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.r.Count(ctx)
}

// Meta returns the build metadata recorded in the index.
func (s *Store) Meta(ctx context.Context) (map[string]string, error) {
	return s.r.Meta(ctx)
}

func (s *Store) decode(stored textindex.StoredFields) *types.Concept {
	c := types.NewConcept("")
	for name, values := range stored {
		f, ok := s.fields.Field(name)
		if !ok {
			s.logger.Debug("ignoring unknown stored field", "field", name)
			continue
		}
		switch v := f.(type) {
		case types.LabelRole:
			c.Labels[v] = values
		case types.Relation:
			c.Relations[v] = values
		default:
			if len(values) > 0 {
				c.URI = values[0]
			}
		}
	}
	return c
}
