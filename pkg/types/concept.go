// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a field identifier is not one of the
// label roles, relation types, or the URI key field.
var ErrUnknownField = errors.New("unknown field")

// Field identifies one stored field of a concept record. The set of
// implementations is closed: LabelRole, Relation, and FieldURI.
type Field interface {
	fmt.Stringer
	isField()
}

// LabelRole is the function a label plays for its concept.
type LabelRole uint8

const (
	RolePref LabelRole = iota + 1
	RoleAlt
	RoleHidden
	RolePrefMale
	RolePrefFemale
	RolePrefNeuter
	RoleAltMale
	RoleAltFemale
	RoleAltNeuter
)

var roleNames = [...]string{
	RolePref:       "pref",
	RoleAlt:        "alt",
	RoleHidden:     "hidden",
	RolePrefMale:   "prefMale",
	RolePrefFemale: "prefFemale",
	RolePrefNeuter: "prefNeuter",
	RoleAltMale:    "altMale",
	RoleAltFemale:  "altFemale",
	RoleAltNeuter:  "altNeuter",
}

func (LabelRole) isField() {}

// Valid reports whether r is one of the declared roles.
func (r LabelRole) Valid() bool {
	return r >= RolePref && r <= RoleAltNeuter
}

func (r LabelRole) String() string {
	if !r.Valid() {
		return fmt.Sprintf("LabelRole(%d)", uint8(r))
	}
	return roleNames[r]
}

// MarshalText encodes the role by name.
func (r LabelRole) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, r)
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText decodes a role name.
func (r *LabelRole) UnmarshalText(text []byte) error {
	v, err := ParseLabelRole(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Relation is the type of a directed edge between two concepts.
type Relation uint8

const (
	RelBroader Relation = iota + 1
	RelBroaderTransitive
	RelNarrower
	RelNarrowerTransitive
	RelRelated
)

var relationNames = [...]string{
	RelBroader:            "broader",
	RelBroaderTransitive:  "broaderTransitive",
	RelNarrower:           "narrower",
	RelNarrowerTransitive: "narrowerTransitive",
	RelRelated:            "related",
}

func (Relation) isField() {}

// Valid reports whether rel is one of the declared relation types.
func (rel Relation) Valid() bool {
	return rel >= RelBroader && rel <= RelRelated
}

func (rel Relation) String() string {
	if !rel.Valid() {
		return fmt.Sprintf("Relation(%d)", uint8(rel))
	}
	return relationNames[rel]
}

// MarshalText encodes the relation by name.
func (rel Relation) MarshalText() ([]byte, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, rel)
	}
	return []byte(relationNames[rel]), nil
}

// UnmarshalText decodes a relation name.
func (rel *Relation) UnmarshalText(text []byte) error {
	v, err := ParseRelation(string(text))
	if err != nil {
		return err
	}
	*rel = v
	return nil
}

type keyField struct{}

func (keyField) isField()       {}
func (keyField) String() string { return "uri" }

// FieldURI is the key field holding the concept URI.
var FieldURI Field = keyField{}

// ValidField reports whether f is a declared field. Out-of-range role or
// relation values and nil are rejected.
func ValidField(f Field) bool {
	switch v := f.(type) {
	case LabelRole:
		return v.Valid()
	case Relation:
		return v.Valid()
	case keyField:
		return true
	}
	return false
}

// LabelRoles returns every label role in declaration order.
func LabelRoles() []LabelRole {
	return []LabelRole{
		RolePref, RoleAlt, RoleHidden,
		RolePrefMale, RolePrefFemale, RolePrefNeuter,
		RoleAltMale, RoleAltFemale, RoleAltNeuter,
	}
}

// DisplayRoles returns the roles used when a related concept is expanded
// into labels, in expansion order. Hidden labels are findable but never
// displayed, so RoleHidden is absent.
func DisplayRoles() []LabelRole {
	return []LabelRole{
		RolePref, RoleAlt,
		RolePrefMale, RolePrefFemale, RolePrefNeuter,
		RoleAltMale, RoleAltFemale, RoleAltNeuter,
	}
}

// Relations returns every relation type in declaration order.
func Relations() []Relation {
	return []Relation{
		RelBroader, RelBroaderTransitive,
		RelNarrower, RelNarrowerTransitive,
		RelRelated,
	}
}

// ParseLabelRole converts a role name such as "pref" or "altFemale".
func ParseLabelRole(s string) (LabelRole, error) {
	for _, r := range LabelRoles() {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: label role %q", ErrUnknownField, s)
}

// ParseRelation converts a relation name such as "broader".
func ParseRelation(s string) (Relation, error) {
	for _, rel := range Relations() {
		if relationNames[rel] == s {
			return rel, nil
		}
	}
	return 0, fmt.Errorf("%w: relation %q", ErrUnknownField, s)
}

// ParseField converts any field name: "uri", a label role, or a relation.
func ParseField(s string) (Field, error) {
	if s == FieldURI.String() {
		return FieldURI, nil
	}
	if r, err := ParseLabelRole(s); err == nil {
		return r, nil
	}
	if rel, err := ParseRelation(s); err == nil {
		return rel, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Concept is the flat, denormalized record stored for one thesaurus concept.
// Label texts are lowercased; slices keep source statement order and are
// not deduplicated.
type Concept struct {
	// URI is the concept's only key.
	URI string `json:"uri" yaml:"uri"`

	// Labels holds label texts per role.
	Labels map[LabelRole][]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Relations holds target concept URIs per relation type.
	Relations map[Relation][]string `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// NewConcept returns an empty record for uri.
func NewConcept(uri string) *Concept {
	return &Concept{
		URI:       uri,
		Labels:    make(map[LabelRole][]string),
		Relations: make(map[Relation][]string),
	}
}

// Values returns the values stored under f, or nil.
func (c *Concept) Values(f Field) []string {
	switch v := f.(type) {
	case LabelRole:
		return c.Labels[v]
	case Relation:
		return c.Relations[v]
	case keyField:
		return []string{c.URI}
	}
	return nil
}
