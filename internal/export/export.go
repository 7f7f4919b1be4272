// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export copies records of a remote model into PostgreSQL.
//
// Records are read page by page through search_read and written to a table of
// the shape
//
//	(model text, record_id bigint, data jsonb, exported_at timestamptz)
//
// keyed by (model, record_id). Re-exporting a record replaces its row.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/logging"
	"odoolink/cli/internal/session"

	"github.com/pterm/pterm"
)

// DefaultPageSize is the number of records fetched per search_read call.
const DefaultPageSize = 500

// DefaultTable is the target table when none is given.
const DefaultTable = "odoolink_records"

// Columns are the target table columns, in CopyFrom order.
var Columns = []string{"model", "record_id", "data", "exported_at"}

// Source reads records. *session.Session implements it.
type Source interface {
	SearchReadAll(ctx context.Context, model string, q session.Query) ([]map[string]any, error)
}

// Sink stores converted rows. *Postgres implements it.
type Sink interface {
	Write(ctx context.Context, model string, rows [][]any) (int64, error)
}

// Options selects what to export.
type Options struct {
	Model    string
	Domain   []any
	Fields   []string
	PageSize int
	// Limit caps the total number of records; zero exports everything.
	Limit int
	// Progress is called after each page with the running total.
	Progress func(done int64)
}

// Exporter moves records from a Source to a Sink.
type Exporter struct {
	src    Source
	sink   Sink
	logger *pterm.Logger
	now    func() time.Time
}

// New creates an Exporter.
func New(src Source, sink Sink, logger *pterm.Logger) *Exporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{src: src, sink: sink, logger: logger, now: time.Now}
}

// Run exports every record matching opts and returns how many rows were
// written.
func (e *Exporter) Run(ctx context.Context, opts Options) (int64, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	at := e.now().UTC()

	var total int64
	offset := 0
	for {
		limit := pageSize
		if opts.Limit > 0 && opts.Limit-offset < limit {
			limit = opts.Limit - offset
		}
		if limit <= 0 {
			break
		}
		records, err := e.src.SearchReadAll(ctx, opts.Model, session.Query{
			Domain: opts.Domain,
			Fields: opts.Fields,
			Limit:  limit,
			Offset: offset,
			Order:  "id",
		})
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			break
		}
		rows, err := Rows(opts.Model, records, at)
		if err != nil {
			return total, err
		}
		n, err := e.sink.Write(ctx, opts.Model, rows)
		if err != nil {
			return total, err
		}
		total += n
		offset += len(records)
		e.logger.Debug("exported page", e.logger.Args("model", opts.Model, "offset", offset, "rows", n))
		if opts.Progress != nil {
			opts.Progress(total)
		}
		if len(records) < limit {
			break
		}
	}
	return total, nil
}

// Rows converts records to table rows. Every record needs an integer id.
func Rows(model string, records []map[string]any, at time.Time) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		id, ok := rec["id"].(int64)
		if !ok {
			return nil, rpcerrors.Newf(rpcerrors.FieldConversion, "record %d of %s has no integer id", i, model)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s(%d): %w", model, id, err)
		}
		rows = append(rows, []any{model, id, data, at})
	}
	return rows, nil
}
