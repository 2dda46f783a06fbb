// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// FieldTable maps every Field to the identifier it is stored under in the
// text index. A table is built once when a store is opened and never
// modified afterwards, so it can be shared across goroutines.
type FieldTable struct {
	names  map[Field]string
	fields map[string]Field
}

// NewFieldTable returns the table used by every index this module writes:
// each field is stored under its own name ("uri", "pref", "broader", ...).
func NewFieldTable() *FieldTable {
	t := &FieldTable{
		names:  make(map[Field]string),
		fields: make(map[string]Field),
	}
	t.add(FieldURI)
	for _, r := range LabelRoles() {
		t.add(r)
	}
	for _, rel := range Relations() {
		t.add(rel)
	}
	return t
}

func (t *FieldTable) add(f Field) {
	name := f.String()
	t.names[f] = name
	t.fields[name] = f
}

// Name returns the on-disk identifier of f.
func (t *FieldTable) Name(f Field) (string, error) {
	if f == nil {
		return "", fmt.Errorf("%w: nil", ErrUnknownField)
	}
	name, ok := t.names[f]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return name, nil
}

// Field returns the field stored under name.
func (t *FieldTable) Field(name string) (Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// Names returns the on-disk identifiers for fs, in order.
func (t *FieldTable) Names(fs ...Field) ([]string, error) {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		name, err := t.Name(f)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}
