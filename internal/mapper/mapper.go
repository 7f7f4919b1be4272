// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package mapper converts between Go entities and the field maps exchanged
// with the service. Each entity type declares its fields once as a Schema of
// explicit accessors, so no reflection is involved.
package mapper

import (
	"fmt"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/xmlrpc"
)

// Field maps one remote field name to an entity attribute.
type Field[T any] struct {
	Name string
	// Get returns the wire-ready value of the attribute.
	Get func(*T) any
	// Set assigns a decoded value to the attribute.
	Set func(*T, any) error
	// ReadOnly fields are read from the service but never sent.
	ReadOnly bool
}

// AsReadOnly returns a copy of f that is never sent.
func (f Field[T]) AsReadOnly() Field[T] {
	f.ReadOnly = true
	return f
}

// Schema is the ordered field list of an entity type.
type Schema[T any] []Field[T]

// Names returns the remote field names in declaration order.
func (s Schema[T]) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Writable returns the schema without read-only fields.
func (s Schema[T]) Writable() Schema[T] {
	out := make(Schema[T], 0, len(s))
	for _, f := range s {
		if !f.ReadOnly {
			out = append(out, f)
		}
	}
	return out
}

// ToStructure renders the writable fields of e as a struct with one member
// per field, in schema order. Every value must be encodable; otherwise
// unsupported_type is returned.
func ToStructure[T any](e *T, schema Schema[T]) (xmlrpc.Struct, error) {
	out := make(xmlrpc.Struct, 0, len(schema))
	for _, f := range schema {
		if f.ReadOnly || f.Get == nil {
			continue
		}
		v, err := xmlrpc.Encode(f.Get(e))
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, xmlrpc.Member{Name: f.Name, Value: v})
	}
	return out, nil
}

// FromStructure builds an entity from a decoded field map. Fields absent from
// m keep their zero value; names in m without a schema entry are ignored. A
// value the field cannot accept fails with field_conversion.
func FromStructure[T any](m map[string]any, schema Schema[T]) (T, error) {
	var e T
	for _, f := range schema {
		v, ok := m[f.Name]
		if !ok || f.Set == nil {
			continue
		}
		if err := f.Set(&e, v); err != nil {
			return e, err
		}
	}
	return e, nil
}

func fieldError(name, expected string, actual any) error {
	return &rpcerrors.FieldError{Field: name, Expected: expected, Actual: actual}
}
