// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"fmt"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/xmlrpc"
)

var timeNow = time.Now

// readMethods are model methods without side effects. Only these are retried
// by the transport.
var readMethods = map[string]bool{
	"read":         true,
	"search":       true,
	"search_read":  true,
	"search_count": true,
	"fields_get":   true,
	"name_get":     true,
	"name_search":  true,
	"read_group":   true,
}

// Execute invokes method on model through execute_kw and coerces the decoded
// result to T. The session must be Authenticated; otherwise not_authenticated
// is returned without contacting the service.
//
// Coercion rules, in order:
//   - a result that already has type T is returned as is;
//   - for T = []map[string]any, a single struct becomes a one-element list and
//     a list of structs (possibly empty) becomes the list;
//   - for T = []int64, a list of integers is converted element-wise;
//   - for T = int, an integer result is narrowed;
//   - anything else fails with a type_coercion error naming T and the shape
//     actually received.
func Execute[T any](ctx context.Context, s *Session, model, method string, args []any, kwargs map[string]any) (T, error) {
	var zero T
	uid, err := s.uid()
	if err != nil {
		return zero, err
	}
	if args == nil {
		args = []any{}
	}
	params := []any{s.cfg.Database, uid, s.cfg.Password, model, method, args}
	if len(kwargs) > 0 {
		params = append(params, kwargs)
	}
	v, err := s.call(ctx, ObjectPath, "execute_kw", readMethods[method], params...)
	if err != nil {
		return zero, fmt.Errorf("%s.%s: %w", model, method, err)
	}
	native, err := xmlrpc.Decode(v)
	if err != nil {
		return zero, fmt.Errorf("%s.%s: %w", model, method, err)
	}
	out, err := coerce[T](native)
	if err != nil {
		return zero, fmt.Errorf("%s.%s: %w", model, method, err)
	}
	return out, nil
}

// coerce converts a decoded result to T.
func coerce[T any](v any) (T, error) {
	if t, ok := v.(T); ok {
		return t, nil
	}
	var zero T
	switch p := any(&zero).(type) {
	case *any:
		// v is nil here; nil is a valid any.
		return zero, nil
	case *[]map[string]any:
		switch x := v.(type) {
		case map[string]any:
			*p = []map[string]any{x}
			return zero, nil
		case []any:
			list := make([]map[string]any, 0, len(x))
			for _, item := range x {
				m, ok := item.(map[string]any)
				if !ok {
					return zero, coercionError[T](v)
				}
				list = append(list, m)
			}
			*p = list
			return zero, nil
		}
	case *[]int64:
		if x, ok := v.([]any); ok {
			ids := make([]int64, 0, len(x))
			for _, item := range x {
				n, ok := item.(int64)
				if !ok {
					return zero, coercionError[T](v)
				}
				ids = append(ids, n)
			}
			*p = ids
			return zero, nil
		}
	case *int:
		if n, ok := v.(int64); ok {
			*p = int(n)
			return zero, nil
		}
	}
	return zero, coercionError[T](v)
}

func coercionError[T any](v any) error {
	var zero T
	return &rpcerrors.CoercionError{
		Expected: fmt.Sprintf("%T", zero),
		Got:      xmlrpc.ShapeOf(v),
	}
}
