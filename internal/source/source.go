// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source locates a thesaurus serialization and decodes it into a
// graph. A source is a local file, a .zip archive holding the file, or an
// http(s) URL to either.
package source

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/skos-index/internal/graph"
	"github.com/pdiddy/skos-index/internal/httputil"
	"github.com/pdiddy/skos-index/internal/secrets"
	"github.com/pdiddy/skos-index/pkg/types"
)

// Loader fetches and decodes sources.
type Loader struct {
	cfg    types.IndexConfig
	client *http.Client
	logger *slog.Logger
}

// NewLoader returns a loader for cfg. A nil client uses one with
// cfg.Timeout.
func NewLoader(cfg types.IndexConfig, client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, client: client, logger: logger}
}

// Load reads the configured source into a new graph. Every error is fatal
// for the build: unreadable location, unknown format, malformed document.
func (l *Loader) Load(ctx context.Context) (*graph.Graph, error) {
	if l.cfg.Source == "" {
		return nil, fmt.Errorf("no source configured")
	}

	data, name, err := l.read(ctx, l.cfg.Source)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(name), ".zip") {
		data, name, err = unzip(data, name)
		if err != nil {
			return nil, err
		}
	}

	format, err := l.format(name)
	if err != nil {
		return nil, err
	}

	l.logger.Info("decoding source", "source", l.cfg.Source, "entry", name, "format", string(format), "bytes", len(data))
	g, err := graph.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", l.cfg.Source, err)
	}
	return g, nil
}

func (l *Loader) format(name string) (types.SourceFormat, error) {
	if l.cfg.Format != "" {
		return graph.ParseFormat(string(l.cfg.Format))
	}
	return graph.FormatFromPath(name)
}

// read returns the raw bytes and the file name used for format inference.
func (l *Loader) read(ctx context.Context, loc string) ([]byte, string, error) {
	if IsRemote(loc) {
		token, err := secrets.Lookup(l.cfg.SecretsDir, secrets.KeyVocabularyToken)
		if err != nil {
			return nil, "", err
		}
		body, err := httputil.Get(ctx, loc, httputil.GetOptions{
			Client:      l.client,
			UserAgent:   l.cfg.UserAgent,
			BearerToken: token,
			MaxRetries:  l.cfg.MaxRetries,
		})
		if err != nil {
			return nil, "", err
		}
		return body, remoteName(loc), nil
	}

	data, err := os.ReadFile(loc)
	if err != nil {
		return nil, "", fmt.Errorf("reading source: %w", err)
	}
	return data, filepath.Base(loc), nil
}

// IsRemote reports whether loc is an http(s) URL.
func IsRemote(loc string) bool {
	lower := strings.ToLower(loc)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func remoteName(loc string) string {
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		loc = loc[:i]
	}
	return path.Base(loc)
}

// unzip picks the archive entry to decode: the one named like the archive
// without its .zip suffix, otherwise the first entry with a known RDF
// extension.
func unzip(data []byte, archiveName string) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("opening archive %s: %w", archiveName, err)
	}

	want := strings.TrimSuffix(archiveName, filepath.Ext(archiveName))
	var pick *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(f.Name) == want {
			pick = f
			break
		}
		if pick == nil && graph.KnownExtension(f.Name) {
			pick = f
		}
	}
	if pick == nil {
		return nil, "", fmt.Errorf("archive %s has no RDF entry", archiveName)
	}

	rc, err := pick.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %s in %s: %w", pick.Name, archiveName, err)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s in %s: %w", pick.Name, archiveName, err)
	}
	return out, path.Base(pick.Name), nil
}
