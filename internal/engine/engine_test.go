// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/index"
	"github.com/pdiddy/skos-index/internal/metric"
	"github.com/pdiddy/skos-index/internal/vocab"
	"github.com/pdiddy/skos-index/pkg/types"
)

// --- test helpers ---

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type builder struct {
	g *graph.Graph
}

func newGraph() *builder {
	return &builder{g: graph.New()}
}

func (b *builder) typed(uri string) *builder {
	b.g.Insert(graph.Triple{Subject: graph.IRI(uri), Predicate: vocab.RDFType, Object: graph.IRI(vocab.SKOSConcept)})
	return b
}

func (b *builder) label(uri string, role types.LabelRole, text, lang string) *builder {
	b.g.Insert(graph.Triple{Subject: graph.IRI(uri), Predicate: vocab.LabelPredicate(role), Object: graph.Literal(text, lang)})
	return b
}

func (b *builder) edge(uri string, rel types.Relation, target string) *builder {
	b.g.Insert(graph.Triple{Subject: graph.IRI(uri), Predicate: vocab.RelationPredicate(rel), Object: graph.IRI(target)})
	return b
}

func buildEngine(t *testing.T, g *graph.Graph, cfg types.IndexConfig, opts Options) (*Engine, index.BuildReport) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	cfg.InMemory = true
	e, report, err := BuildGraph(context.Background(), g, cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, report
}

// threeConcepts is cat/animal/dog where dog has no type assertion.
func threeConcepts() *graph.Graph {
	b := newGraph()
	b.typed("http://ex/cat").
		label("http://ex/cat", types.RolePref, "Cat", "en").
		edge("http://ex/cat", types.RelBroader, "http://ex/animal")
	b.typed("http://ex/animal").
		label("http://ex/animal", types.RolePref, "Animal", "en")
	b.label("http://ex/dog", types.RoleAlt, "Canine", "en").
		edge("http://ex/dog", types.RelBroader, "http://ex/animal")
	return b.g
}

func fixturePath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("testdata", "animals.ttl"))
	require.NoError(t, err)
	return p
}

// --- end to end ---

func TestEndToEnd(t *testing.T) {
	e, report := buildEngine(t, threeConcepts(), types.IndexConfig{Source: "mem"}, Options{})
	ctx := context.Background()

	assert.Equal(t, 3, report.Concepts)
	assert.Equal(t, 1, report.Entailed)

	uris, err := e.ResolveLabel(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/cat"}, uris)

	uris, err = e.ResolveLabel(ctx, "canine")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/dog"}, uris)

	labels, err := e.RelationLabels(ctx, "http://ex/cat", types.RelBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{"animal"}, labels)

	terms, err := e.AltTerms(ctx, "canine")
	require.NoError(t, err)
	assert.Equal(t, []string{"canine"}, terms)
}

func TestBuildFromTurtleFile(t *testing.T) {
	cfg := types.IndexConfig{
		Source:   fixturePath(t),
		IndexDir: t.TempDir(),
	}
	ctx := context.Background()

	e, report, err := Build(ctx, cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer e.Close()

	assert.False(t, report.Reused)
	assert.Equal(t, cfg.IndexPath(), report.Path)
	assert.Equal(t, 3, report.Concepts)
	assert.Equal(t, 1, report.Entailed)

	pref, err := e.Field(ctx, "http://ex/dog", types.RolePref)
	require.NoError(t, err)
	assert.Empty(t, pref)

	alt, err := e.Labels(ctx, "http://ex/dog", types.RoleAlt)
	require.NoError(t, err)
	assert.Equal(t, []string{"canine"}, alt)
}

// --- properties ---

func TestResolveLabelIgnoresCase(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/a").label("http://ex/a", types.RolePref, "Öl", "de")
	b.typed("http://ex/b").label("http://ex/b", types.RoleAltFemale, "Ärztin", "de")
	b.typed("http://ex/c").label("http://ex/c", types.RoleHidden, "Mixed Case", "en")
	b.typed("http://ex/road").label("http://ex/road", types.RolePref, "Οδός", "el")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})
	ctx := context.Background()

	for _, s := range []string{"Öl", "Ärztin", "Mixed Case", "Οδός", "nothing"} {
		lower, err := e.ResolveLabel(ctx, s)
		require.NoError(t, err)
		upper, err := e.ResolveLabel(ctx, strings.ToUpper(s))
		require.NoError(t, err)
		assert.Equal(t, lower, upper, s)
	}

	uris, err := e.ResolveLabel(ctx, "MIXED case")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/c"}, uris, "hidden labels resolve")

	// Word-final capital sigma lowercases to ς, matching the stored label.
	uris, err = e.ResolveLabel(ctx, "ΟΔΌΣ")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/road"}, uris)

	pref, err := e.Field(ctx, "http://ex/road", types.RolePref)
	require.NoError(t, err)
	assert.Equal(t, []string{"οδός"}, pref)
}

func TestResolveLabelDistinctAcrossRoles(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/a").
		label("http://ex/a", types.RolePref, "term", "en").
		label("http://ex/a", types.RoleAlt, "Term", "en").
		label("http://ex/a", types.RolePrefNeuter, "TERM", "en")
	b.typed("http://ex/b").label("http://ex/b", types.RoleAltMale, "term", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})

	uris, err := e.ResolveLabel(context.Background(), "term")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/a", "http://ex/b"}, uris)
}

func TestFieldRoundTripKeepsOrderAndDuplicates(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/a").
		label("http://ex/a", types.RolePref, "Zebra", "en").
		label("http://ex/a", types.RolePref, "apple", "en").
		label("http://ex/a", types.RolePref, "ZEBRA", "en").
		label("http://ex/a", types.RolePref, "Mango", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})

	got, err := e.Field(context.Background(), "http://ex/a", types.RolePref)
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "apple", "zebra", "mango"}, got)
}

func TestLanguageFilter(t *testing.T) {
	g := func() *graph.Graph {
		b := newGraph()
		b.typed("http://ex/a").
			label("http://ex/a", types.RolePref, "Hund", "de").
			label("http://ex/a", types.RoleAlt, "Dog", "en")
		return b.g
	}
	ctx := context.Background()

	filtered, report := buildEngine(t, g(), types.IndexConfig{Languages: []string{"en"}}, Options{})
	got, err := filtered.Field(ctx, "http://ex/a", types.RolePref)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, report.LabelsFiltered)

	uris, err := filtered.ResolveLabel(ctx, "hund")
	require.NoError(t, err)
	assert.Empty(t, uris)

	all, _ := buildEngine(t, g(), types.IndexConfig{}, Options{})
	got, err = all.Field(ctx, "http://ex/a", types.RolePref)
	require.NoError(t, err)
	assert.Equal(t, []string{"hund"}, got)
}

func TestEntailmentCompleteness(t *testing.T) {
	b := newGraph()
	for i, role := range types.LabelRoles() {
		uri := "http://ex/untyped/" + role.String()
		b.label(uri, role, "label "+string(rune('a'+i)), "en")
	}
	e, report := buildEngine(t, b.g, types.IndexConfig{}, Options{})
	assert.Equal(t, len(types.LabelRoles()), report.Entailed)

	for _, role := range types.LabelRoles() {
		_, err := e.Field(context.Background(), "http://ex/untyped/"+role.String(), types.RolePref)
		assert.NoError(t, err, role.String())
	}
}

func TestRelationLabelsOrder(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/A").
		edge("http://ex/A", types.RelBroader, "http://ex/B").
		edge("http://ex/A", types.RelBroader, "http://ex/C")
	b.typed("http://ex/B")
	for _, role := range types.LabelRoles() {
		b.label("http://ex/B", role, "B-"+role.String(), "en")
	}
	b.typed("http://ex/C").
		label("http://ex/C", types.RoleAltNeuter, "C-altNeuter", "en").
		label("http://ex/C", types.RolePref, "C-pref", "en").
		label("http://ex/C", types.RolePref, "shared", "en")
	b.label("http://ex/B", types.RoleAlt, "shared", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})

	got, err := e.RelationLabels(context.Background(), "http://ex/A", types.RelBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"b-pref", "b-alt", "shared",
		"b-prefmale", "b-preffemale", "b-prefneuter",
		"b-altmale", "b-altfemale", "b-altneuter",
		"c-pref", "shared", "c-altneuter",
	}, got)
}

// Hidden labels find a concept through ResolveLabel but are never part of
// a relation expansion.
func TestHiddenLabelsResolveButDoNotExpand(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/child").edge("http://ex/child", types.RelBroader, "http://ex/parent")
	b.typed("http://ex/parent").
		label("http://ex/parent", types.RolePref, "Parent", "en").
		label("http://ex/parent", types.RoleHidden, "Secret", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})
	ctx := context.Background()

	uris, err := e.ResolveLabel(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/parent"}, uris)

	labels, err := e.RelationLabels(ctx, "http://ex/child", types.RelBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{"parent"}, labels)
}

func TestRelationLabelsUnknownConcepts(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/a").
		edge("http://ex/a", types.RelRelated, "http://ex/dangling").
		edge("http://ex/a", types.RelRelated, "http://ex/b")
	b.typed("http://ex/b").label("http://ex/b", types.RolePref, "B", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})
	ctx := context.Background()

	labels, err := e.RelationLabels(ctx, "http://ex/a", types.RelRelated)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, labels)

	labels, err = e.RelationLabels(ctx, "http://ex/unknown", types.RelRelated)
	require.NoError(t, err)
	assert.Empty(t, labels)
	assert.NotNil(t, labels)

	_, err = e.RelationLabels(ctx, "http://ex/a", types.Relation(0))
	assert.ErrorIs(t, err, types.ErrUnknownField)
}

func TestRelationCycleTerminates(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/a").label("http://ex/a", types.RolePref, "A", "").edge("http://ex/a", types.RelBroader, "http://ex/b")
	b.typed("http://ex/b").label("http://ex/b", types.RolePref, "B", "").edge("http://ex/b", types.RelBroader, "http://ex/a")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})

	labels, err := e.RelationLabels(context.Background(), "http://ex/a", types.RelBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, labels)
}

func TestFieldNotFoundAndInvalid(t *testing.T) {
	e, _ := buildEngine(t, threeConcepts(), types.IndexConfig{}, Options{})
	ctx := context.Background()

	_, err := e.Field(ctx, "http://ex/unicorn", types.RolePref)
	assert.ErrorIs(t, err, ErrConceptNotFound)

	_, err = e.Field(ctx, "http://ex/cat", nil)
	assert.ErrorIs(t, err, types.ErrUnknownField)

	uri, err := e.Field(ctx, "http://ex/cat", types.FieldURI)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/cat"}, uri)

	targets, err := e.Concepts(ctx, "http://ex/cat", types.RelBroader)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/animal"}, targets)

	none, err := e.Concepts(ctx, "http://ex/cat", types.RelNarrower)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAltTermsAcrossConcepts(t *testing.T) {
	b := newGraph()
	b.typed("http://ex/bank-river").
		label("http://ex/bank-river", types.RolePref, "Bank", "en").
		label("http://ex/bank-river", types.RoleAlt, "Shore", "en")
	b.typed("http://ex/bank-money").
		label("http://ex/bank-money", types.RoleHidden, "bank", "en").
		label("http://ex/bank-money", types.RoleAlt, "Lender", "en").
		label("http://ex/bank-money", types.RoleAlt, "Shore", "en")
	e, _ := buildEngine(t, b.g, types.IndexConfig{}, Options{})

	terms, err := e.AltTerms(context.Background(), "BANK")
	require.NoError(t, err)
	assert.Equal(t, []string{"shore", "lender", "shore"}, terms)

	terms, err = e.AltTerms(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestConcurrentQueries(t *testing.T) {
	e, _ := buildEngine(t, threeConcepts(), types.IndexConfig{}, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			switch i % 3 {
			case 0:
				_, err = e.ResolveLabel(ctx, "cat")
			case 1:
				_, err = e.RelationLabels(ctx, "http://ex/dog", types.RelBroader)
			default:
				_, err = e.AltTerms(ctx, "canine")
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

// --- persistence ---

func TestBuildReusesPersistedIndex(t *testing.T) {
	ctx := context.Background()
	cfg := types.IndexConfig{Source: fixturePath(t), IndexDir: t.TempDir()}
	opts := Options{Logger: quietLogger()}

	first, report, err := Build(ctx, cfg, opts)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.False(t, report.Reused)

	// Reuse must not touch the source.
	cfg.Source = filepath.Join(t.TempDir(), "animals.ttl")
	require.NoError(t, os.WriteFile(cfg.Source, []byte("<http://ex/a> <http://ex/b> ."), 0o644))
	cfg.IndexDir = filepath.Dir(report.Path)

	second, reused, err := Build(ctx, cfg, opts)
	require.NoError(t, err)
	defer second.Close()
	assert.True(t, reused.Reused)
	assert.Equal(t, report.BuildID, reused.BuildID)
	assert.Equal(t, 3, reused.Concepts)

	cfg.Rebuild = true
	_, _, err = Build(ctx, cfg, opts)
	assert.ErrorIs(t, err, ErrBuildFailed)
}

func TestBuildSourceNameWithURIDelimiters(t *testing.T) {
	ctx := context.Background()
	data, err := os.ReadFile(fixturePath(t))
	require.NoError(t, err)

	srcDir := t.TempDir()
	cfg := types.IndexConfig{Source: filepath.Join(srcDir, "animals#v2?.ttl"), IndexDir: t.TempDir()}
	require.NoError(t, os.WriteFile(cfg.Source, data, 0o644))
	opts := Options{Logger: quietLogger()}

	e, report, err := Build(ctx, cfg, opts)
	require.NoError(t, err)
	require.NoError(t, e.Close())
	assert.Equal(t, filepath.Join(cfg.IndexDir, "animals#v2?.ttl.db"), report.Path)

	entries, err := os.ReadDir(cfg.IndexDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no stray files next to the index")
	assert.Equal(t, "animals#v2?.ttl.db", entries[0].Name())

	again, reused, err := Build(ctx, cfg, opts)
	require.NoError(t, err)
	defer again.Close()
	assert.True(t, reused.Reused)
	assert.Equal(t, report.BuildID, reused.BuildID)

	uris, err := again.ResolveLabel(ctx, "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex/cat"}, uris)
}

func TestBuildLanguagesUseSeparateIndexes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	opts := Options{Logger: quietLogger()}

	all, _, err := Build(ctx, types.IndexConfig{Source: fixturePath(t), IndexDir: dir}, opts)
	require.NoError(t, err)
	defer all.Close()

	de, report, err := Build(ctx, types.IndexConfig{Source: fixturePath(t), IndexDir: dir, Languages: []string{"de"}}, opts)
	require.NoError(t, err)
	defer de.Close()
	assert.False(t, report.Reused)

	uris, err := de.ResolveLabel(ctx, "cat")
	require.NoError(t, err)
	assert.Empty(t, uris)
}

func TestBuildFailures(t *testing.T) {
	ctx := context.Background()
	opts := Options{Logger: quietLogger()}

	_, _, err := Build(ctx, types.IndexConfig{Source: filepath.Join(t.TempDir(), "missing.ttl"), InMemory: true}, opts)
	assert.ErrorIs(t, err, ErrBuildFailed)

	_, _, err = Build(ctx, types.IndexConfig{Source: fixturePath(t), Format: "jsonld", InMemory: true}, opts)
	assert.ErrorIs(t, err, ErrBuildFailed)
	assert.ErrorIs(t, err, graph.ErrUnsupportedFormat)
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	cfg := types.IndexConfig{Source: fixturePath(t), IndexDir: t.TempDir(), Languages: []string{"fr", "en"}}

	e, report, err := Build(ctx, cfg, Options{Logger: quietLogger()})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := Open(ctx, report.Path, Options{Logger: quietLogger()})
	require.NoError(t, err)
	defer reopened.Close()

	info, err := reopened.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.BuildID, info.BuildID)
	assert.Equal(t, cfg.Source, info.Source)
	assert.Equal(t, []string{"en", "fr"}, info.Languages)
	assert.Equal(t, 3, info.Concepts)
	assert.False(t, info.BuiltAt.IsZero())
}

// --- export ---

func TestExport(t *testing.T) {
	e, _ := buildEngine(t, threeConcepts(), types.IndexConfig{}, Options{})
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, e.Export(ctx, &buf, ExportYAML))

	var fromYAML []ExportEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 3)
	assert.Equal(t, ExportEntry{
		URI:       "http://ex/cat",
		Labels:    map[string][]string{"pref": {"cat"}},
		Relations: map[string][]string{"broader": {"http://ex/animal"}},
	}, fromYAML[0])
	assert.Equal(t, "http://ex/dog", fromYAML[2].URI)

	buf.Reset()
	require.NoError(t, e.Export(ctx, &buf, ExportJSON))
	var fromJSON []ExportEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, fromYAML, fromJSON)

	assert.Error(t, e.Export(ctx, &buf, "csv"))
}

// --- metrics ---

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	require.NoError(t, err)

	e, _ := buildEngine(t, threeConcepts(), types.IndexConfig{}, Options{Metrics: m})
	ctx := context.Background()

	assert.Equal(t, float64(3), testutil.ToFloat64(m.ConceptsIndexed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Entailed))

	_, err = e.ResolveLabel(ctx, "cat")
	require.NoError(t, err)
	_, err = e.Field(ctx, "http://ex/unicorn", types.RolePref)
	require.ErrorIs(t, err, ErrConceptNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Queries.WithLabelValues(opResolveLabel)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotFound.WithLabelValues(opField)))
}

func TestAltTermsCountsOnlyItsOwnQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	require.NoError(t, err)

	e, _ := buildEngine(t, threeConcepts(), types.IndexConfig{}, Options{Metrics: m})

	terms, err := e.AltTerms(context.Background(), "Canine")
	require.NoError(t, err)
	assert.Equal(t, []string{"canine"}, terms)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Queries.WithLabelValues(opAltTerms)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.Queries.WithLabelValues(opResolveLabel)))
}
