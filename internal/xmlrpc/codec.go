// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xmlrpc

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
)

// DateTimeLayout is the fixed wire layout for dateTime.iso8601 values.
const DateTimeLayout = "20060102T15:04:05"

// Encode converts a native Go value into a wire Value.
//
// Supported shapes: nil, signed and unsigned integers that fit in int64,
// string, bool, float32/float64, time.Time, slices and arrays of encodable
// elements, maps with string keys, and values that already are a Value or a
// []Member. Anything else fails with unsupported_type and no partial value is
// returned. Map keys are sorted so that equal maps encode identically.
func Encode(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Nil{}, nil
	case Struct:
		if err := checkMembers(t); err != nil {
			return nil, err
		}
		return t, nil
	case Value:
		return t, nil
	case []Member:
		if err := checkMembers(t); err != nil {
			return nil, err
		}
		return Struct(t), nil
	case int:
		return Int(t), nil
	case int8:
		return Int(t), nil
	case int16:
		return Int(t), nil
	case int32:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(t), nil
	case uint16:
		return Int(t), nil
	case uint32:
		return Int(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return nil, rpcerrors.Newf(rpcerrors.UnsupportedType, "uint %d overflows int64", t)
		}
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, rpcerrors.Newf(rpcerrors.UnsupportedType, "uint64 %d overflows int64", t)
		}
		return Int(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float32:
		return encodeFloat(float64(t))
	case float64:
		return encodeFloat(t)
	case time.Time:
		return DateTime(t.Truncate(time.Second)), nil
	case []any:
		return encodeList(len(t), func(i int) any { return t[i] })
	case map[string]any:
		return encodeMap(t)
	}
	return encodeReflect(v)
}

func encodeFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, rpcerrors.Newf(rpcerrors.UnsupportedType, "double %v has no wire form", f)
	}
	return Double(f), nil
}

func encodeList(n int, at func(int) any) (Value, error) {
	out := make(Array, 0, n)
	for i := 0; i < n; i++ {
		ev, err := Encode(at(i))
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func encodeMap(m map[string]any) (Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Struct, 0, len(keys))
	for _, k := range keys {
		ev, err := Encode(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, Member{Name: k, Value: ev})
	}
	return out, nil
}

// encodeReflect handles typed slices and string-keyed maps such as []string,
// []int64 or map[string]string.
func encodeReflect(v any) (Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte would need base64, which this client does not send.
			break
		}
		return encodeList(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Array:
		return encodeList(rv.Len(), func(i int) any { return rv.Index(i).Interface() })
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return encodeMap(m)
	case reflect.Pointer:
		if rv.IsNil() {
			return Nil{}, nil
		}
		return Encode(rv.Elem().Interface())
	}
	return nil, rpcerrors.New(rpcerrors.UnsupportedType, fmt.Sprintf("%T", v))
}

// Decode converts a wire Value into its native Go form: int64, string, bool,
// float64, time.Time, []any, map[string]any or nil.
func Decode(v Value) (any, error) {
	switch t := v.(type) {
	case nil, Nil:
		return nil, nil
	case Int:
		return int64(t), nil
	case String:
		return string(t), nil
	case Bool:
		return bool(t), nil
	case Double:
		return float64(t), nil
	case DateTime:
		return time.Time(t), nil
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			d, err := Decode(e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case Struct:
		if err := checkMembers(t); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(t))
		for _, m := range t {
			d, err := Decode(m.Value)
			if err != nil {
				return nil, err
			}
			out[m.Name] = d
		}
		return out, nil
	}
	return nil, rpcerrors.New(rpcerrors.UnsupportedType, fmt.Sprintf("%T", v))
}

// checkMembers enforces named, unique struct members.
func checkMembers(members []Member) error {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.Name == "" {
			return rpcerrors.New(rpcerrors.MissingMemberName, "struct member without name")
		}
		if _, dup := seen[m.Name]; dup {
			return rpcerrors.Newf(rpcerrors.ProtocolError, "duplicate struct member %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// ShapeOf describes the native shape of a decoded value for error messages.
func ShapeOf(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case int64:
		return "int"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "double"
	case time.Time:
		return "dateTime"
	case []any:
		return "array"
	case map[string]any:
		return "struct"
	}
	return fmt.Sprintf("%T", v)
}
