// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine is the public face of the concept index: it runs the
// build pipeline (load, entail, index, reopen) and answers label and
// relation queries against the resulting read-only store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/skos-index/internal/entail"
	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/index"
	"github.com/pdiddy/skos-index/internal/metric"
	"github.com/pdiddy/skos-index/internal/source"
	"github.com/pdiddy/skos-index/pkg/types"
)

// ErrBuildFailed wraps every fatal build error.
var ErrBuildFailed = errors.New("index build failed")

// Options carries the runtime dependencies of an Engine.
type Options struct {
	Logger     *slog.Logger
	Metrics    *metric.Metrics
	HTTPClient *http.Client
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Engine answers queries against an open concept index. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	store   *index.Store
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Build returns an engine for cfg. A persisted index at cfg.IndexPath() is
// reused unless cfg.Rebuild or cfg.InMemory is set; otherwise the source is
// loaded, entailed and indexed. Fatal errors wrap ErrBuildFailed.
func Build(ctx context.Context, cfg types.IndexConfig, opts Options) (*Engine, index.BuildReport, error) {
	logger := opts.logger()

	if !cfg.InMemory && !cfg.Rebuild {
		path := cfg.IndexPath()
		if _, err := os.Stat(path); err == nil {
			e, err := Open(ctx, path, opts)
			if err != nil {
				return nil, index.BuildReport{}, err
			}
			report := index.BuildReport{Path: path, Reused: true}
			if info, err := e.Info(ctx); err == nil {
				report.BuildID = info.BuildID
				report.Concepts = info.Concepts
			}
			logger.Info("reusing existing index", "path", path)
			return e, report, nil
		}
	}

	start := time.Now()
	g, err := source.NewLoader(cfg, opts.HTTPClient, logger).Load(ctx)
	if err != nil {
		return nil, index.BuildReport{}, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	return buildGraph(ctx, g, cfg, opts, start)
}

// BuildGraph indexes an already loaded graph. g is mutated by entailment.
func BuildGraph(ctx context.Context, g *graph.Graph, cfg types.IndexConfig, opts Options) (*Engine, index.BuildReport, error) {
	return buildGraph(ctx, g, cfg, opts, time.Now())
}

func buildGraph(ctx context.Context, g *graph.Graph, cfg types.IndexConfig, opts Options, start time.Time) (*Engine, index.BuildReport, error) {
	logger := opts.logger()

	report := index.BuildReport{
		BuildID: uuid.NewString(),
		Triples: g.Len(),
	}

	entailed, err := entail.Concepts(g, logger)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	report.Entailed = entailed

	if !cfg.InMemory {
		report.Path = cfg.IndexPath()
	}

	langs := slices.Clone(cfg.Languages)
	slices.Sort(langs)

	store, err := index.Build(ctx, g, index.BuildOptions{
		Path:      report.Path,
		Languages: cfg.Languages,
		Meta: map[string]string{
			index.MetaBuildID:   report.BuildID,
			index.MetaSource:    cfg.Source,
			index.MetaLanguages: strings.Join(langs, ","),
			index.MetaBuiltAt:   start.UTC().Format(time.RFC3339),
		},
		Logger: logger,
	}, &report)
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	report.Duration = time.Since(start)
	opts.Metrics.RecordBuild(report.Duration, report.Concepts, report.Entailed, anomalyCounts(report))

	logger.Info("index built",
		"build_id", report.BuildID,
		"concepts", report.Concepts,
		"entailed", report.Entailed,
		"anomalies", len(report.Anomalies),
		"duration", report.Duration,
	)

	return newEngine(store, opts), report, nil
}

func anomalyCounts(r index.BuildReport) map[string]int {
	counts := make(map[string]int)
	for _, a := range r.Anomalies {
		counts[string(a.Kind)]++
	}
	return counts
}

// Open returns an engine over a persisted index without building.
func Open(ctx context.Context, path string, opts Options) (*Engine, error) {
	store, err := index.Open(ctx, path, opts.logger())
	if err != nil {
		return nil, err
	}
	e := newEngine(store, opts)
	if n, err := store.Count(ctx); err == nil {
		opts.Metrics.RecordOpen(n)
	}
	return e, nil
}

func newEngine(store *index.Store, opts Options) *Engine {
	return &Engine{
		store:   store,
		logger:  opts.logger(),
		metrics: opts.Metrics,
	}
}

// Close releases the index. Queries after Close fail.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Info describes the open index.
type Info struct {
	BuildID   string    `json:"build_id" yaml:"build_id"`
	Source    string    `json:"source" yaml:"source"`
	Languages []string  `json:"languages,omitempty" yaml:"languages,omitempty"`
	BuiltAt   time.Time `json:"built_at" yaml:"built_at"`
	Concepts  int       `json:"concepts" yaml:"concepts"`
}

// Info returns the build metadata recorded in the index.
func (e *Engine) Info(ctx context.Context) (Info, error) {
	meta, err := e.store.Meta(ctx)
	if err != nil {
		return Info{}, err
	}
	n, err := e.store.Count(ctx)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		BuildID:  meta[index.MetaBuildID],
		Source:   meta[index.MetaSource],
		Concepts: n,
	}
	if l := meta[index.MetaLanguages]; l != "" {
		info.Languages = strings.Split(l, ",")
	}
	if t, err := time.Parse(time.RFC3339, meta[index.MetaBuiltAt]); err == nil {
		info.BuiltAt = t
	}
	return info, nil
}
