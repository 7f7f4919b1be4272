// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/xmlrpc"
)

// Query narrows a search. Zero values are left out of the call.
type Query struct {
	Domain []any
	Fields []string
	Limit  int
	Offset int
	Order  string
}

func (q Query) domain() []any {
	if q.Domain == nil {
		return []any{}
	}
	return q.Domain
}

func (q Query) kwargs() map[string]any {
	kw := map[string]any{}
	if len(q.Fields) > 0 {
		kw["fields"] = q.Fields
	}
	if q.Limit > 0 {
		kw["limit"] = q.Limit
	}
	if q.Offset > 0 {
		kw["offset"] = q.Offset
	}
	if q.Order != "" {
		kw["order"] = q.Order
	}
	return kw
}

// Create creates one record and returns its id. values is a map[string]any
// or an xmlrpc.Struct; a Struct keeps its member order on the wire.
func (s *Session) Create(ctx context.Context, model string, values any) (int64, error) {
	if err := checkValues(values); err != nil {
		return 0, err
	}
	return Execute[int64](ctx, s, model, "create", []any{values}, nil)
}

// Read reads the given records and returns the first one, or an empty map
// when none matched.
func (s *Session) Read(ctx context.Context, model string, ids []int64, fields []string) (map[string]any, error) {
	records, err := s.ReadAll(ctx, model, ids, fields)
	if err != nil {
		return nil, err
	}
	return first(records), nil
}

// ReadAll reads the given records.
func (s *Session) ReadAll(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	var kw map[string]any
	if len(fields) > 0 {
		kw = map[string]any{"fields": fields}
	}
	return Execute[[]map[string]any](ctx, s, model, "read", []any{ids}, kw)
}

// Write updates the given records with values, given as for Create.
func (s *Session) Write(ctx context.Context, model string, ids []int64, values any) (bool, error) {
	if err := checkValues(values); err != nil {
		return false, err
	}
	return Execute[bool](ctx, s, model, "write", []any{ids, values}, nil)
}

// checkValues accepts the field-value shapes of create and write.
func checkValues(values any) error {
	switch values.(type) {
	case map[string]any, xmlrpc.Struct, []xmlrpc.Member:
		return nil
	}
	return rpcerrors.Newf(rpcerrors.UnsupportedType, "record values must be a struct, got %T", values)
}

// Unlink deletes the given records.
func (s *Session) Unlink(ctx context.Context, model string, ids []int64) (bool, error) {
	return Execute[bool](ctx, s, model, "unlink", []any{ids}, nil)
}

// SearchRead returns the first record matching q, or an empty map.
func (s *Session) SearchRead(ctx context.Context, model string, q Query) (map[string]any, error) {
	records, err := s.SearchReadAll(ctx, model, q)
	if err != nil {
		return nil, err
	}
	return first(records), nil
}

// SearchReadAll returns every record matching q.
func (s *Session) SearchReadAll(ctx context.Context, model string, q Query) ([]map[string]any, error) {
	return Execute[[]map[string]any](ctx, s, model, "search_read", []any{q.domain()}, q.kwargs())
}

// Search returns the ids of records matching q. Fields are ignored.
func (s *Session) Search(ctx context.Context, model string, q Query) ([]int64, error) {
	q.Fields = nil
	return Execute[[]int64](ctx, s, model, "search", []any{q.domain()}, q.kwargs())
}

// SearchCount counts records matching domain.
func (s *Session) SearchCount(ctx context.Context, model string, domain []any) (int64, error) {
	return Execute[int64](ctx, s, model, "search_count", []any{Query{Domain: domain}.domain()}, nil)
}

func first(records []map[string]any) map[string]any {
	if len(records) == 0 {
		return map[string]any{}
	}
	return records[0]
}
