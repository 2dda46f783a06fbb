// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab holds the RDF, SKOS, and EHRI SKOS-extension IRIs the
// indexer reads, and maps label roles and relation types to predicates.
//
// References:
//   - SKOS: https://www.w3.org/TR/skos-reference/
//   - EHRI extension: http://data.ehri-project.eu/skos-extension#
package vocab

import "github.com/pdiddy/skos-index/pkg/types"

const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
	EHRINamespace = "http://data.ehri-project.eu/skos-extension#"
)

// RDF
const (
	RDFType = RDFNamespace + "type"
)

// SKOS core
const (
	SKOSConcept = SKOSNamespace + "Concept"

	SKOSPrefLabel   = SKOSNamespace + "prefLabel"
	SKOSAltLabel    = SKOSNamespace + "altLabel"
	SKOSHiddenLabel = SKOSNamespace + "hiddenLabel"

	SKOSBroader            = SKOSNamespace + "broader"
	SKOSBroaderTransitive  = SKOSNamespace + "broaderTransitive"
	SKOSNarrower           = SKOSNamespace + "narrower"
	SKOSNarrowerTransitive = SKOSNamespace + "narrowerTransitive"
	SKOSRelated            = SKOSNamespace + "related"
)

// EHRI gender-qualified labels
const (
	EHRIPrefMaleLabel   = EHRINamespace + "prefMaleLabel"
	EHRIPrefFemaleLabel = EHRINamespace + "prefFemaleLabel"
	EHRIPrefNeuterLabel = EHRINamespace + "prefNeuterLabel"
	EHRIAltMaleLabel    = EHRINamespace + "altMaleLabel"
	EHRIAltFemaleLabel  = EHRINamespace + "altFemaleLabel"
	EHRIAltNeuterLabel  = EHRINamespace + "altNeuterLabel"
)

var labelPredicates = map[types.LabelRole]string{
	types.RolePref:       SKOSPrefLabel,
	types.RoleAlt:        SKOSAltLabel,
	types.RoleHidden:     SKOSHiddenLabel,
	types.RolePrefMale:   EHRIPrefMaleLabel,
	types.RolePrefFemale: EHRIPrefFemaleLabel,
	types.RolePrefNeuter: EHRIPrefNeuterLabel,
	types.RoleAltMale:    EHRIAltMaleLabel,
	types.RoleAltFemale:  EHRIAltFemaleLabel,
	types.RoleAltNeuter:  EHRIAltNeuterLabel,
}

var relationPredicates = map[types.Relation]string{
	types.RelBroader:            SKOSBroader,
	types.RelBroaderTransitive:  SKOSBroaderTransitive,
	types.RelNarrower:           SKOSNarrower,
	types.RelNarrowerTransitive: SKOSNarrowerTransitive,
	types.RelRelated:            SKOSRelated,
}

// LabelPredicate returns the predicate IRI carrying labels of role r.
func LabelPredicate(r types.LabelRole) string {
	return labelPredicates[r]
}

// RelationPredicate returns the predicate IRI carrying edges of type rel.
func RelationPredicate(rel types.Relation) string {
	return relationPredicates[rel]
}

// LabelPredicates returns the predicate IRIs of every label role, in role
// declaration order.
func LabelPredicates() []string {
	roles := types.LabelRoles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = labelPredicates[r]
	}
	return out
}
