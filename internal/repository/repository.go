// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package repository provides typed CRUD access to one remote model, built on
// a session and an entity schema.
package repository

import (
	"context"
	"fmt"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/mapper"
	"odoolink/cli/internal/session"
)

// Client is the subset of *session.Session a repository needs.
type Client interface {
	Create(ctx context.Context, model string, values any) (int64, error)
	ReadAll(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error)
	SearchReadAll(ctx context.Context, model string, q session.Query) ([]map[string]any, error)
	SearchCount(ctx context.Context, model string, domain []any) (int64, error)
	Write(ctx context.Context, model string, ids []int64, values any) (bool, error)
	Unlink(ctx context.Context, model string, ids []int64) (bool, error)
}

// Repository maps records of one model to entities of type T.
type Repository[T any] struct {
	client Client
	model  string
	schema mapper.Schema[T]
}

// New creates a repository for model.
func New[T any](client Client, model string, schema mapper.Schema[T]) *Repository[T] {
	return &Repository[T]{client: client, model: model, schema: schema}
}

// Model returns the remote model name.
func (r *Repository[T]) Model() string { return r.model }

// Create creates a record from e and returns its id.
func (r *Repository[T]) Create(ctx context.Context, e *T) (int64, error) {
	values, err := mapper.ToStructure(e, r.schema)
	if err != nil {
		return 0, err
	}
	return r.client.Create(ctx, r.model, values)
}

// GetByID loads one record. A missing record is reported as false, not as an
// error.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	records, err := r.client.ReadAll(ctx, r.model, []int64{id}, r.schema.Names())
	if err != nil {
		return zero, false, err
	}
	if len(records) == 0 {
		return zero, false, nil
	}
	e, err := mapper.FromStructure(records[0], r.schema)
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// Search returns the entities matching domain, at most limit when positive.
func (r *Repository[T]) Search(ctx context.Context, domain []any, limit int) ([]T, error) {
	records, err := r.client.SearchReadAll(ctx, r.model, session.Query{
		Domain: domain,
		Fields: r.schema.Names(),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		e, err := mapper.FromStructure(rec, r.schema)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Count returns the number of records matching domain.
func (r *Repository[T]) Count(ctx context.Context, domain []any) (int64, error) {
	return r.client.SearchCount(ctx, r.model, domain)
}

// Update writes the writable fields of e to record id.
func (r *Repository[T]) Update(ctx context.Context, id int64, e *T) error {
	values, err := mapper.ToStructure(e, r.schema)
	if err != nil {
		return err
	}
	ok, err := r.client.Write(ctx, r.model, []int64{id}, values)
	if err != nil {
		return err
	}
	if !ok {
		return rpcerrors.New(rpcerrors.OperationRejected, fmt.Sprintf("%s.write(%d) returned false", r.model, id))
	}
	return nil
}

// Delete removes record id.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	ok, err := r.client.Unlink(ctx, r.model, []int64{id})
	if err != nil {
		return err
	}
	if !ok {
		return rpcerrors.New(rpcerrors.OperationRejected, fmt.Sprintf("%s.unlink(%d) returned false", r.model, id))
	}
	return nil
}
