// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skos-index/internal/engine"
	"github.com/pdiddy/skos-index/pkg/types"
)

// --- resolve subcommand ---

var resolveCmd = &cobra.Command{
	Use:   "resolve <label>",
	Short: "List the concepts a label names",
	Long: `Resolve matches the label, ignoring case, against every label role
(preferred, alternative, hidden and the gender-qualified roles) and prints
the URIs of the matching concepts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		uris, err := e.ResolveLabel(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printValues(cmd, uris)
	},
}

// --- field subcommand ---

var fieldCmd = &cobra.Command{
	Use:   "field <concept-uri> <field>",
	Short: "Print the stored values of one field of a concept",
	Long: `Field prints the values stored for a concept under one field: a label
role (pref, alt, hidden, prefMale, prefFemale, prefNeuter, altMale,
altFemale, altNeuter) or a relation (broader, broaderTransitive, narrower,
narrowerTransitive, related).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := types.ParseField(args[1])
		if err != nil {
			return err
		}

		e, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		values, err := e.Field(cmd.Context(), args[0], f)
		if errors.Is(err, engine.ErrConceptNotFound) {
			fmt.Fprintf(os.Stderr, "unknown concept %s\n", args[0])
			return printValues(cmd, []string{})
		}
		if err != nil {
			return err
		}
		return printValues(cmd, values)
	},
}

// --- labels subcommand ---

var labelsCmd = &cobra.Command{
	Use:   "labels <concept-uri> <relation>",
	Short: "Print the labels of the concepts related through one relation",
	Long: `Labels follows the concept's edges of one relation type and prints the
labels of every target, target by target, in the order pref, alt,
prefMale, prefFemale, prefNeuter, altMale, altFemale, altNeuter. Hidden
labels are not printed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rel, err := types.ParseRelation(args[1])
		if err != nil {
			return err
		}

		e, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		labels, err := e.RelationLabels(cmd.Context(), args[0], rel)
		if err != nil {
			return err
		}
		return printValues(cmd, labels)
	},
}

// --- alt-terms subcommand ---

var altTermsCmd = &cobra.Command{
	Use:   "alt-terms <label>",
	Short: "Print the alternative labels of every concept a label names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		terms, err := e.AltTerms(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printValues(cmd, terms)
	},
}

// --- info subcommand ---

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the build metadata of the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		info, err := e.Info(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(info)
		}
		fmt.Printf("build:     %s\n", info.BuildID)
		fmt.Printf("source:    %s\n", info.Source)
		fmt.Printf("languages: %s\n", languagesText(info.Languages))
		fmt.Printf("built at:  %s\n", info.BuiltAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Printf("concepts:  %d\n", info.Concepts)
		return nil
	},
}

// --- shared helpers ---

func printValues(cmd *cobra.Command, values []string) error {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(values)
	}
	for _, v := range values {
		fmt.Println(v)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func languagesText(langs []string) string {
	if len(langs) == 0 {
		return "all"
	}
	return strings.Join(langs, ", ")
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, fieldCmd, labelsCmd, altTermsCmd, infoCmd} {
		c.Flags().Bool("json", false, "output results as JSON")
		rootCmd.AddCommand(c)
	}
}
