// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"fmt"
	"strings"

	"odoolink/cli/internal/dsn"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres writes rows to one table over a pgx connection pool.
type Postgres struct {
	// Pool is the PostgreSQL connection pool
	Pool  *pgxpool.Pool
	table pgx.Identifier
}

// ParseTable splits an optionally schema-qualified table name.
func ParseTable(name string) (pgx.Identifier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTable
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// Open connects to the database described by info and checks it is reachable.
func Open(ctx context.Context, info *dsn.Info, table string) (*Postgres, error) {
	ident, err := ParseTable(table)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, info.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", info.Redacted(), err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", info.Redacted(), err)
	}
	return &Postgres{Pool: pool, table: ident}, nil
}

// Close releases the pool.
func (p *Postgres) Close() { p.Pool.Close() }

// CreateTableSQL returns the DDL of the target table.
func CreateTableSQL(table pgx.Identifier) string {
	return "CREATE TABLE IF NOT EXISTS " + table.Sanitize() + ` (
	model       text        NOT NULL,
	record_id   bigint      NOT NULL,
	data        jsonb       NOT NULL,
	exported_at timestamptz NOT NULL,
	PRIMARY KEY (model, record_id)
)`
}

// EnsureTable creates the target table if missing.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, CreateTableSQL(p.table))
	return err
}

// Write replaces the rows of model with the same record ids, in one
// transaction.
func (p *Postgres) Write(ctx context.Context, model string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r[1].(int64)
	}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // Rollback if commit doesn't happen

	del := "DELETE FROM " + p.table.Sanitize() + " WHERE model = $1 AND record_id = ANY($2)"
	if _, err := tx.Exec(ctx, del, model, ids); err != nil {
		return 0, fmt.Errorf("delete previous rows: %w", err)
	}
	n, err := tx.CopyFrom(ctx, p.table, Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit failed: %w", err)
	}
	return n, nil
}
