// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"

	"github.com/pdiddy/skos-index/pkg/types"
)

// ErrUnsupportedFormat is returned for serializations the decoder cannot read.
var ErrUnsupportedFormat = errors.New("unsupported RDF serialization format")

var extensionFormats = map[string]types.SourceFormat{
	".ttl":     types.FormatTurtle,
	".turtle":  types.FormatTurtle,
	".n3":      types.FormatN3,
	".nt":      types.FormatNTriples,
	".rdf":     types.FormatRDFXML,
	".xml":     types.FormatRDFXML,
	".owl":     types.FormatRDFXML,
	".skos":    types.FormatRDFXML,
	".rdfxml":  types.FormatRDFXML,
	".ntriple": types.FormatNTriples,
}

// ParseFormat normalizes a user-supplied format name. It accepts the
// canonical names plus the common spellings "TURTLE", "N3", "N-TRIPLES"
// and "RDF/XML".
func ParseFormat(s string) (types.SourceFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "turtle", "ttl":
		return types.FormatTurtle, nil
	case "n3":
		return types.FormatN3, nil
	case "ntriples", "n-triples", "nt":
		return types.FormatNTriples, nil
	case "rdfxml", "rdf/xml", "xml":
		return types.FormatRDFXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the serialization from a file name extension.
func FormatFromPath(path string) (types.SourceFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: cannot infer format from %q", ErrUnsupportedFormat, filepath.Base(path))
}

// KnownExtension reports whether path has an extension FormatFromPath accepts.
func KnownExtension(path string) bool {
	_, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

func decoderFormat(f types.SourceFormat) (rdf.Format, error) {
	switch f {
	case types.FormatTurtle, types.FormatN3:
		return rdf.Turtle, nil
	case types.FormatNTriples:
		return rdf.NTriples, nil
	case types.FormatRDFXML:
		return rdf.RDFXML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Decode reads every triple from r into a new graph. N3 input is decoded
// with the Turtle grammar, which covers the N3 subset used by thesauri.
func Decode(r io.Reader, format types.SourceFormat) (*Graph, error) {
	rf, err := decoderFormat(format)
	if err != nil {
		return nil, err
	}

	g := New()
	dec := rdf.NewTripleDecoder(r, rf)
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding %s triple %d: %w", format, g.Len()+1, err)
		}

		t, err := fromRDF(tr)
		if err != nil {
			return nil, err
		}
		g.Insert(t)
	}
	return g, nil
}

func fromRDF(tr rdf.Triple) (Triple, error) {
	subj, err := termFromRDF(tr.Subj)
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	obj, err := termFromRDF(tr.Obj)
	if err != nil {
		return Triple{}, fmt.Errorf("object: %w", err)
	}
	return Triple{Subject: subj, Predicate: tr.Pred.String(), Object: obj}, nil
}

func termFromRDF(t rdf.Term) (Term, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return IRI(v.String()), nil
	case rdf.Blank:
		return Blank(strings.TrimPrefix(v.String(), "_:")), nil
	case rdf.Literal:
		lit := Literal(v.String(), v.Lang())
		if lit.Lang == "" {
			lit.Datatype = v.DataType.String()
		}
		return lit, nil
	}
	return Term{}, fmt.Errorf("unexpected RDF term %T", t)
}
