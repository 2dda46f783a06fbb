// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entail repairs missing concept type assertions before indexing.
//
// Rule: any subject with at least one label statement (SKOS pref/alt/hidden
// or an EHRI gender-qualified label) is a skos:Concept. The rule's premise
// never mentions rdf:type, so one pass reaches the fixed point.
package entail

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/vocab"
)

// Graph is the subset of the graph accessor the rule needs.
type Graph interface {
	Subjects() []graph.Term
	HasAny(subject graph.Term, predicates ...string) bool
	Insert(t graph.Triple) bool
}

// Concepts applies the rule to g in place and returns the number of type
// triples it added. Existing triples are never removed or changed.
func Concepts(g Graph, logger *slog.Logger) (int, error) {
	if g == nil {
		return 0, fmt.Errorf("entailment: nil graph")
	}
	if logger == nil {
		logger = slog.Default()
	}

	labelPredicates := vocab.LabelPredicates()
	concept := graph.IRI(vocab.SKOSConcept)

	// Snapshot first: inserting may append new subjects to g.
	subjects := g.Subjects()

	added := 0
	for _, s := range subjects {
		if !g.HasAny(s, labelPredicates...) {
			continue
		}
		if g.Insert(graph.Triple{Subject: s, Predicate: vocab.RDFType, Object: concept}) {
			added++
		}
	}

	logger.Debug("entailed concept types", "added", added, "subjects", len(subjects))
	return added, nil
}
