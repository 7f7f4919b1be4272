// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parseJSON decodes a JSON command-line argument into the value shapes the
// XML-RPC codec accepts: integers become int64, other numbers float64.
func parseJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON %q: %w", s, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid JSON %q: trailing data", s)
	}
	return normalizeJSON(v)
}

func normalizeJSON(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", x)
		}
		return f, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalizeJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := normalizeJSON(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case nil:
		return false, nil
	}
	return v, nil
}

// parseDomain decodes a search domain; empty input means every record.
func parseDomain(s string) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return []any{}, nil
	}
	v, err := parseJSON(s)
	if err != nil {
		return nil, err
	}
	domain, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("domain must be a JSON array, got %s", s)
	}
	return domain, nil
}

// parseObject decodes a JSON object such as record values or call kwargs.
func parseObject(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := parseJSON(s)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", s)
	}
	return m, nil
}

// parseArray decodes positional call arguments.
func parseArray(s string) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return []any{}, nil
	}
	v, err := parseJSON(s)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %s", s)
	}
	return a, nil
}

// parseIDs reads record ids given as "1,2,3" or as separate arguments.
func parseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid record id %q", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one record id is required")
	}
	return ids, nil
}

// splitFields turns "name,email" into a field list; empty means all fields.
func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// marshalCompact is used for debug logging of call arguments.
func marshalCompact(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}
