// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package mapper

import (
	"time"
)

// The service sends false for an empty scalar field. Setters of non-bool
// fields treat false and nil as the zero value.

// TimeLayout is the service's textual datetime form, always in UTC.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the service's textual date form.
const DateLayout = "2006-01-02"

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	b, ok := v.(bool)
	return ok && !b
}

// StringField binds a string attribute. An empty string is sent as false.
func StringField[T any](name string, attr func(*T) *string) Field[T] {
	return Field[T]{
		Name: name,
		Get: func(e *T) any {
			if s := *attr(e); s != "" {
				return s
			}
			return false
		},
		Set: func(e *T, v any) error {
			if isEmpty(v) {
				*attr(e) = ""
				return nil
			}
			s, ok := v.(string)
			if !ok {
				return fieldError(name, "string", v)
			}
			*attr(e) = s
			return nil
		},
	}
}

// IntField binds an integer attribute.
func IntField[T any](name string, attr func(*T) *int64) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(e *T) any { return *attr(e) },
		Set: func(e *T, v any) error {
			if isEmpty(v) {
				*attr(e) = 0
				return nil
			}
			n, ok := v.(int64)
			if !ok {
				return fieldError(name, "int", v)
			}
			*attr(e) = n
			return nil
		},
	}
}

// BoolField binds a boolean attribute.
func BoolField[T any](name string, attr func(*T) *bool) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(e *T) any { return *attr(e) },
		Set: func(e *T, v any) error {
			if v == nil {
				*attr(e) = false
				return nil
			}
			b, ok := v.(bool)
			if !ok {
				return fieldError(name, "boolean", v)
			}
			*attr(e) = b
			return nil
		},
	}
}

// FloatField binds a float attribute. Integers are widened.
func FloatField[T any](name string, attr func(*T) *float64) Field[T] {
	return Field[T]{
		Name: name,
		Get:  func(e *T) any { return *attr(e) },
		Set: func(e *T, v any) error {
			switch x := v.(type) {
			case float64:
				*attr(e) = x
				return nil
			case int64:
				*attr(e) = float64(x)
				return nil
			}
			if isEmpty(v) {
				*attr(e) = 0
				return nil
			}
			return fieldError(name, "double", v)
		},
	}
}

// TimeField binds a datetime attribute. It accepts a wire dateTime or the
// service's "2006-01-02 15:04:05" / "2006-01-02" strings, read as UTC, and
// sends the textual form. A zero time is sent as false.
func TimeField[T any](name string, attr func(*T) *time.Time) Field[T] {
	return Field[T]{
		Name: name,
		Get: func(e *T) any {
			t := *attr(e)
			if t.IsZero() {
				return false
			}
			return t.UTC().Format(TimeLayout)
		},
		Set: func(e *T, v any) error {
			switch x := v.(type) {
			case time.Time:
				*attr(e) = x
				return nil
			case string:
				for _, layout := range []string{TimeLayout, DateLayout} {
					if t, err := time.ParseInLocation(layout, x, time.UTC); err == nil {
						*attr(e) = t
						return nil
					}
				}
				return fieldError(name, "datetime", v)
			}
			if isEmpty(v) {
				*attr(e) = time.Time{}
				return nil
			}
			return fieldError(name, "datetime", v)
		},
	}
}

// Many2One is a reference to another record. The service reads it as an
// [id, display name] pair and writes it as the bare id.
type Many2One struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// IsSet reports whether the reference points at a record.
func (m Many2One) IsSet() bool { return m.ID > 0 }

// Many2OneField binds a relation attribute. An unset relation is sent as
// false.
func Many2OneField[T any](name string, attr func(*T) *Many2One) Field[T] {
	return Field[T]{
		Name: name,
		Get: func(e *T) any {
			if ref := *attr(e); ref.IsSet() {
				return ref.ID
			}
			return false
		},
		Set: func(e *T, v any) error {
			switch x := v.(type) {
			case int64:
				*attr(e) = Many2One{ID: x}
				return nil
			case []any:
				if len(x) == 2 {
					id, okID := x[0].(int64)
					label, okName := x[1].(string)
					if okID && okName {
						*attr(e) = Many2One{ID: id, Name: label}
						return nil
					}
				}
				return fieldError(name, "[id, name]", v)
			}
			if isEmpty(v) {
				*attr(e) = Many2One{}
				return nil
			}
			return fieldError(name, "[id, name]", v)
		},
	}
}
