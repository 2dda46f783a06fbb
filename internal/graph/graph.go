// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds a loaded thesaurus as an in-memory set of RDF triples
// and answers the few primitive queries the indexer needs: subjects of a
// type, property values of a subject, and insertion of derived triples.
//
// Subjects and statements are enumerated in the order they were first
// added, so every pass over the same source is deterministic.
package graph

import "github.com/pdiddy/skos-index/internal/vocab"

// TermKind distinguishes the three RDF term kinds.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	}
	return "unknown"
}

// Term is an RDF node. Lang and Datatype are only set on literals.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns a named resource term.
func IRI(iri string) Term { return Term{Kind: KindIRI, Value: iri} }

// Blank returns a blank node term.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

// Literal returns a plain or language-tagged literal.
func Literal(text, lang string) Term { return Term{Kind: KindLiteral, Value: text, Lang: lang} }

// URI returns the term's IRI and true if the term is a named resource.
func (t Term) URI() (string, bool) {
	if t.Kind != KindIRI || t.Value == "" {
		return "", false
	}
	return t.Value, true
}

func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + t.Value + `"`
		if t.Lang != "" {
			s += "@" + t.Lang
		}
		return s
	}
	return t.Value
}

// Triple is one statement. The predicate is always an IRI.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

type node struct {
	subject Term
	objects map[string][]Term
}

// Graph is a set of triples. Adding a triple that is already present has
// no effect. A Graph is not safe for concurrent mutation; the indexer only
// mutates it during the single-threaded build.
type Graph struct {
	nodes []*node
	index map[Term]int
	seen  map[Triple]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[Term]int),
		seen:  make(map[Triple]struct{}),
	}
}

// Insert adds t and reports whether it was new.
func (g *Graph) Insert(t Triple) bool {
	if _, ok := g.seen[t]; ok {
		return false
	}
	g.seen[t] = struct{}{}

	i, ok := g.index[t.Subject]
	if !ok {
		i = len(g.nodes)
		g.index[t.Subject] = i
		g.nodes = append(g.nodes, &node{subject: t.Subject, objects: make(map[string][]Term)})
	}
	n := g.nodes[i]
	n.objects[t.Predicate] = append(n.objects[t.Predicate], t.Object)
	return true
}

// Contains reports whether t is in the graph.
func (g *Graph) Contains(t Triple) bool {
	_, ok := g.seen[t]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.seen)
}

// Subjects returns every subject in first-seen order.
func (g *Graph) Subjects() []Term {
	out := make([]Term, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.subject
	}
	return out
}

// Statements returns the objects of (subject, predicate, ?) in insertion order.
func (g *Graph) Statements(subject Term, predicate string) []Term {
	i, ok := g.index[subject]
	if !ok {
		return nil
	}
	return g.nodes[i].objects[predicate]
}

// HasAny reports whether subject has at least one statement using any of
// predicates.
func (g *Graph) HasAny(subject Term, predicates ...string) bool {
	i, ok := g.index[subject]
	if !ok {
		return false
	}
	for _, p := range predicates {
		if len(g.nodes[i].objects[p]) > 0 {
			return true
		}
	}
	return false
}

// SubjectsOfType returns the subjects having an rdf:type statement whose
// object is class, in first-seen order.
func (g *Graph) SubjectsOfType(class string) []Term {
	want := IRI(class)
	var out []Term
	for _, n := range g.nodes {
		for _, o := range n.objects[vocab.RDFType] {
			if o == want {
				out = append(out, n.subject)
				break
			}
		}
	}
	return out
}
