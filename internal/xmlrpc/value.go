// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xmlrpc implements the XML-RPC value model, the value codec and the
// request/response envelopes used to talk to the remote business-object service.
//
// Wire values form a closed union: the Value interface has an unexported
// method, so the eight variants declared in this file are the only values
// that can exist. Every function that switches over variants handles all of
// them or fails with an unsupported_type error.
//
// Everything in this package is pure and safe for concurrent use.
package xmlrpc

import (
	"time"
)

// Kind identifies a Value variant.
type Kind int

const (
	KindNil Kind = iota
	KindInt
	KindString
	KindBool
	KindDouble
	KindDateTime
	KindArray
	KindStruct
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindInt:      "int",
	KindString:   "string",
	KindBool:     "boolean",
	KindDouble:   "double",
	KindDateTime: "dateTime.iso8601",
	KindArray:    "array",
	KindStruct:   "struct",
}

// String returns the wire tag of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a wire value. The concrete types are Nil, Int, String, Bool,
// Double, DateTime, Array and Struct.
type Value interface {
	Kind() Kind
	isValue()
}

// Nil is the absent value.
type Nil struct{}

// Int is a 64-bit signed integer.
type Int int64

// String is text.
type String string

// Bool is a boolean.
type Bool bool

// Double is a 64-bit float.
type Double float64

// DateTime is a calendar date-time with second precision and no zone.
type DateTime time.Time

// Array is an ordered list of values.
type Array []Value

// Struct is an ordered list of named members. Names are unique within one
// struct.
type Struct []Member

// Member is one named entry of a Struct.
type Member struct {
	Name  string
	Value Value
}

func (Nil) Kind() Kind      { return KindNil }
func (Int) Kind() Kind      { return KindInt }
func (String) Kind() Kind   { return KindString }
func (Bool) Kind() Kind     { return KindBool }
func (Double) Kind() Kind   { return KindDouble }
func (DateTime) Kind() Kind { return KindDateTime }
func (Array) Kind() Kind    { return KindArray }
func (Struct) Kind() Kind   { return KindStruct }

func (Nil) isValue()      {}
func (Int) isValue()      {}
func (String) isValue()   {}
func (Bool) isValue()     {}
func (Double) isValue()   {}
func (DateTime) isValue() {}
func (Array) isValue()    {}
func (Struct) isValue()   {}

// Time returns the date-time as a time.Time.
func (d DateTime) Time() time.Time { return time.Time(d) }

// Get returns the value of the named member.
func (s Struct) Get(name string) (Value, bool) {
	for _, m := range s {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// Names returns member names in wire order.
func (s Struct) Names() []string {
	out := make([]string, len(s))
	for i, m := range s {
		out[i] = m.Name
	}
	return out
}
