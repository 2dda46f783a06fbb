// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"log/slog"

	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/vocab"
	"github.com/pdiddy/skos-index/pkg/types"
)

// StatementSource lists the objects of (subject, predicate, ?).
type StatementSource interface {
	Statements(subject graph.Term, predicate string) []graph.Term
}

// Builder turns concept subjects into normalized records. Problems with a
// single concept, label, or edge are recorded in the report and skipped.
type Builder struct {
	languages map[string]struct{}
	logger    *slog.Logger
	report    *BuildReport
}

// NewBuilder returns a builder that keeps only labels whose language tag is
// in languages, or every label when languages is empty. Anomalies and
// counts are added to report.
func NewBuilder(languages []string, report *BuildReport, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if report == nil {
		report = &BuildReport{}
	}
	b := &Builder{logger: logger, report: report}
	if len(languages) > 0 {
		b.languages = make(map[string]struct{}, len(languages))
		for _, l := range languages {
			b.languages[l] = struct{}{}
		}
	}
	return b
}

// Concept builds the record for subject. It returns false when the subject
// has no URI.
func (b *Builder) Concept(src StatementSource, subject graph.Term) (*types.Concept, bool) {
	uri, ok := subject.URI()
	if !ok {
		b.anomaly(Anomaly{Kind: AnomalyConceptWithoutURI, Subject: subject.String()})
		return nil, false
	}

	c := types.NewConcept(uri)
	for _, role := range types.LabelRoles() {
		b.labels(src, subject, c, role)
	}
	for _, rel := range types.Relations() {
		b.edges(src, subject, c, rel)
	}
	return c, true
}

func (b *Builder) labels(src StatementSource, subject graph.Term, c *types.Concept, role types.LabelRole) {
	predicate := vocab.LabelPredicate(role)
	for _, obj := range src.Statements(subject, predicate) {
		if obj.Kind != graph.KindLiteral {
			b.anomaly(Anomaly{
				Kind:      AnomalyLabelNotLiteral,
				Subject:   c.URI,
				Predicate: predicate,
				Object:    obj.String(),
			})
			continue
		}
		if b.languages != nil {
			if _, ok := b.languages[obj.Lang]; !ok {
				b.report.LabelsFiltered++
				continue
			}
		}
		c.Labels[role] = append(c.Labels[role], types.NormalizeLabel(obj.Value))
		b.report.LabelsIndexed++
	}
}

func (b *Builder) edges(src StatementSource, subject graph.Term, c *types.Concept, rel types.Relation) {
	predicate := vocab.RelationPredicate(rel)
	for _, obj := range src.Statements(subject, predicate) {
		target, ok := obj.URI()
		if !ok {
			b.anomaly(Anomaly{
				Kind:      AnomalyRelationWithoutURI,
				Subject:   c.URI,
				Predicate: predicate,
				Object:    obj.String(),
			})
			continue
		}
		c.Relations[rel] = append(c.Relations[rel], target)
		b.report.EdgesIndexed++
	}
}

func (b *Builder) anomaly(a Anomaly) {
	b.report.Anomalies = append(b.report.Anomalies, a)
	b.logger.Warn("skipping item while indexing",
		"kind", string(a.Kind),
		"concept", a.Subject,
		"predicate", a.Predicate,
		"object", a.Object,
	)
}
