// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skos-index/internal/index"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build (or reuse) the concept index and print a build report",
	Long: `Build loads the thesaurus, asserts skos:Concept for every subject that
carries a label, and writes one record per concept to the index. Concepts
without a URI and relation targets without a URI are skipped and listed in
the report.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	e, report, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatBuildReport(report, jsonOutput)
}

func formatBuildReport(r index.BuildReport, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	where := r.Path
	if where == "" {
		where = "(in memory)"
	}
	if r.Reused {
		fmt.Printf("reused %s: %d concepts (build %s)\n", where, r.Concepts, r.BuildID)
		return nil
	}

	fmt.Printf("built %s in %v\n", where, r.Duration.Round(1e6))
	fmt.Printf("triples: %d, entailed: %d, concepts: %d\n", r.Triples, r.Entailed, r.Concepts)
	fmt.Printf("labels: %d indexed, %d filtered; edges: %d\n", r.LabelsIndexed, r.LabelsFiltered, r.EdgesIndexed)
	for _, kind := range []index.AnomalyKind{
		index.AnomalyConceptWithoutURI,
		index.AnomalyRelationWithoutURI,
		index.AnomalyLabelNotLiteral,
	} {
		if n := r.Count(kind); n > 0 {
			fmt.Printf("skipped %-22s %d\n", kind, n)
		}
	}
	return nil
}

func init() {
	buildCmd.Flags().Bool("json", false, "output the report as JSON")
	rootCmd.AddCommand(buildCmd)
}
