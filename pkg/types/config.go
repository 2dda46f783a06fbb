package types

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SourceFormat identifies the RDF serialization of a thesaurus source.
type SourceFormat string

const (
	FormatTurtle   SourceFormat = "turtle"
	FormatN3       SourceFormat = "n3"
	FormatNTriples SourceFormat = "ntriples"
	FormatRDFXML   SourceFormat = "rdfxml"
)

// HTTPConfig holds settings for fetching a remote thesaurus.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "skos-index/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// IndexConfig holds settings for building and opening a concept index.
type IndexConfig struct {
	HTTPConfig `yaml:",inline"`

	// Source is a file path, a .zip archive, or an http(s) URL.
	Source string `json:"source" yaml:"source"`

	// Format is the source serialization. Empty infers it from the
	// source extension.
	Format SourceFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Languages is the label language allow-list. Empty keeps every
	// language; labels in other languages are dropped at build time.
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	// IndexDir is the directory holding persisted indexes (default "skosdata").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// InMemory builds an ephemeral index that is discarded on Close.
	InMemory bool `json:"in_memory" yaml:"in_memory"`

	// Rebuild forces a new build even if a persisted index exists.
	Rebuild bool `json:"rebuild" yaml:"rebuild"`

	// SecretsDir holds credential files such as vocabulary-token
	// (default ".secrets").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// DefaultIndexDir is used when IndexConfig.IndexDir is empty.
const DefaultIndexDir = "skosdata"

// LanguageSet returns the allow-list as a set, or nil when every language
// is allowed.
func (c IndexConfig) LanguageSet() map[string]struct{} {
	if len(c.Languages) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.Languages))
	for _, l := range c.Languages {
		set[l] = struct{}{}
	}
	return set
}

// IndexPath returns where the persisted index for this configuration
// lives: <index_dir>/<source base name>[-<sorted languages>].db. Builds
// with different allow-lists never share a file.
func (c IndexConfig) IndexPath() string {
	dir := c.IndexDir
	if dir == "" {
		dir = DefaultIndexDir
	}

	name := c.Source
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	name = filepath.Base(strings.TrimRight(name, "/"))
	if name == "." || name == "/" || name == "" {
		name = "thesaurus"
	}

	if len(c.Languages) > 0 {
		langs := slices.Clone(c.Languages)
		slices.Sort(langs)
		langs = slices.Compact(langs)
		name += "-" + strings.Join(langs, ".")
	}
	return filepath.Join(dir, name+".db")
}
