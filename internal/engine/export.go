// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/skos-index/pkg/types"
)

// ExportEntry is one concept record in an export file.
type ExportEntry struct {
	URI       string              `json:"uri" yaml:"uri"`
	Labels    map[string][]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Relations map[string][]string `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// ExportFormat selects the export serialization.
type ExportFormat string

const (
	ExportYAML ExportFormat = "yaml"
	ExportJSON ExportFormat = "json"
)

// Export writes every record to w in build order.
func (e *Engine) Export(ctx context.Context, w io.Writer, format ExportFormat) error {
	entries, err := e.exportEntries(ctx)
	if err != nil {
		return err
	}

	switch format {
	case ExportYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported format %q: use yaml or json", format)
}

func (e *Engine) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	entries := []ExportEntry{}
	err := e.Each(ctx, func(c *types.Concept) error {
		entry := ExportEntry{URI: c.URI}
		for _, role := range types.LabelRoles() {
			if v := c.Labels[role]; len(v) > 0 {
				if entry.Labels == nil {
					entry.Labels = make(map[string][]string)
				}
				entry.Labels[role.String()] = v
			}
		}
		for _, rel := range types.Relations() {
			if v := c.Relations[rel]; len(v) > 0 {
				if entry.Relations == nil {
					entry.Relations = make(map[string][]string)
				}
				entry.Relations[rel.String()] = v
			}
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return entries, nil
}
