// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import "time"

// AnomalyKind classifies a recoverable problem found while building records.
type AnomalyKind string

const (
	// AnomalyConceptWithoutURI: a concept-typed subject is a blank node.
	// The whole concept is left out of the index.
	AnomalyConceptWithoutURI AnomalyKind = "concept_without_uri"

	// AnomalyRelationWithoutURI: a relation object is a blank node or a
	// literal. Only that edge is left out.
	AnomalyRelationWithoutURI AnomalyKind = "relation_without_uri"

	// AnomalyLabelNotLiteral: a label predicate points at a resource
	// instead of a literal. Only that label is left out.
	AnomalyLabelNotLiteral AnomalyKind = "label_not_literal"
)

// Anomaly describes one skipped item.
type Anomaly struct {
	Kind      AnomalyKind `json:"kind" yaml:"kind"`
	Subject   string      `json:"subject" yaml:"subject"`
	Predicate string      `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	Object    string      `json:"object,omitempty" yaml:"object,omitempty"`
}

// BuildReport summarizes one index build.
type BuildReport struct {
	BuildID string `json:"build_id" yaml:"build_id"`

	// Path is the index file, empty for in-memory indexes.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Reused is set when an existing index was opened instead of built.
	Reused bool `json:"reused" yaml:"reused"`

	Triples        int `json:"triples" yaml:"triples"`
	Entailed       int `json:"entailed" yaml:"entailed"`
	Concepts       int `json:"concepts" yaml:"concepts"`
	LabelsIndexed  int `json:"labels_indexed" yaml:"labels_indexed"`
	LabelsFiltered int `json:"labels_filtered" yaml:"labels_filtered"`
	EdgesIndexed   int `json:"edges_indexed" yaml:"edges_indexed"`

	Anomalies []Anomaly `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`

	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Count returns the number of anomalies of kind.
func (r BuildReport) Count(kind AnomalyKind) int {
	n := 0
	for _, a := range r.Anomalies {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
