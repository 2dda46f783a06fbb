// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/skos-index/internal/index"
	"github.com/pdiddy/skos-index/pkg/types"
)

// ErrConceptNotFound is returned by lookups of a URI that has no record.
var ErrConceptNotFound = index.ErrConceptNotFound

const (
	opResolveLabel   = "resolve_label"
	opField          = "field"
	opRelationLabels = "relation_labels"
	opAltTerms       = "alt_terms"
	opConcept        = "concept"
)

// ResolveLabel returns the URIs of every concept that has text, compared
// case-insensitively, as a label of any role (hidden included). Each
// concept appears once, in index build order.
func (e *Engine) ResolveLabel(ctx context.Context, text string) ([]string, error) {
	e.metrics.RecordQuery(opResolveLabel)
	uris, err := e.store.LookupLabel(ctx, types.NormalizeLabel(text))
	if err != nil {
		return nil, fmt.Errorf("resolving label %q: %w", text, err)
	}
	return uris, nil
}

// Field returns the values stored under f for the concept uri, in source
// order. A concept without values for f yields an empty slice. An unknown
// concept yields ErrConceptNotFound.
func (e *Engine) Field(ctx context.Context, uri string, f types.Field) ([]string, error) {
	if !types.ValidField(f) {
		return nil, fmt.Errorf("%w: %v", types.ErrUnknownField, f)
	}
	e.metrics.RecordQuery(opField)

	c, err := e.lookup(ctx, opField, uri)
	if err != nil {
		return nil, err
	}
	return nonNil(c.Values(f)), nil
}

// Labels returns the concept's labels of one role.
func (e *Engine) Labels(ctx context.Context, uri string, role types.LabelRole) ([]string, error) {
	return e.Field(ctx, uri, role)
}

// Concepts returns the URIs the concept points at through rel.
func (e *Engine) Concepts(ctx context.Context, uri string, rel types.Relation) ([]string, error) {
	return e.Field(ctx, uri, rel)
}

// Concept returns the whole record for uri.
func (e *Engine) Concept(ctx context.Context, uri string) (*types.Concept, error) {
	e.metrics.RecordQuery(opConcept)
	return e.lookup(ctx, opConcept, uri)
}

// RelationLabels expands the concept's rel edges into the labels of each
// target: for every target in edge order, its labels in DisplayRoles
// order. Hidden labels are not part of the expansion even though
// ResolveLabel matches them. Duplicates across targets are kept. Unknown
// source or target concepts contribute nothing.
func (e *Engine) RelationLabels(ctx context.Context, uri string, rel types.Relation) ([]string, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("%w: %v", types.ErrUnknownField, rel)
	}
	e.metrics.RecordQuery(opRelationLabels)

	src, err := e.lookup(ctx, opRelationLabels, uri)
	if errors.Is(err, ErrConceptNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	labels := []string{}
	for _, target := range src.Relations[rel] {
		c, err := e.lookup(ctx, opRelationLabels, target)
		if errors.Is(err, ErrConceptNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, role := range types.DisplayRoles() {
			labels = append(labels, c.Labels[role]...)
		}
	}
	return labels, nil
}

// AltTerms returns the alternative labels of every concept text resolves
// to. A failure on one concept is logged and skipped; the labels gathered
// from the other concepts are still returned.
func (e *Engine) AltTerms(ctx context.Context, text string) ([]string, error) {
	e.metrics.RecordQuery(opAltTerms)

	uris, err := e.store.LookupLabel(ctx, types.NormalizeLabel(text))
	if err != nil {
		return nil, fmt.Errorf("resolving label %q: %w", text, err)
	}

	terms := []string{}
	for _, uri := range uris {
		c, err := e.lookup(ctx, opAltTerms, uri)
		if err != nil {
			e.logger.Warn("skipping concept in alt-term lookup", "concept", uri, "error", err)
			continue
		}
		terms = append(terms, c.Labels[types.RoleAlt]...)
	}
	return terms, nil
}

// Each calls fn for every record in build order.
func (e *Engine) Each(ctx context.Context, fn func(*types.Concept) error) error {
	return e.store.Concepts(ctx, fn)
}

func (e *Engine) lookup(ctx context.Context, op, uri string) (*types.Concept, error) {
	c, err := e.store.Concept(ctx, uri)
	if errors.Is(err, ErrConceptNotFound) {
		e.metrics.RecordNotFound(op)
		e.logger.Info("unknown concept", "concept", uri, "operation", op)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("reading concept %s: %w", uri, err)
	}
	return c, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
