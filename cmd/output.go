// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes v in the selected output format. Tables are only produced
// for record lists; anything else falls back to JSON.
func render(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	records, ok := v.([]map[string]any)
	if !ok {
		return render(w, outputJSON, v)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(records)).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

// tableData lays records out as rows. The id column comes first, the rest
// in name order.
func tableData(records []map[string]any) pterm.TableData {
	seen := map[string]bool{}
	var cols []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] && k != "id" {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	if _, ok := records[0]["id"]; ok {
		cols = append([]string{"id"}, cols...)
	}

	data := pterm.TableData{cols}
	for _, rec := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(rec[c])
		}
		data = append(data, row)
	}
	return data
}

// cell formats one field value. false stands for an empty field and many2one
// pairs show their display name.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if !x {
			return ""
		}
		return "true"
	case string:
		return x
	case []any:
		if len(x) == 2 {
			if name, ok := x[1].(string); ok {
				return name
			}
		}
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = cell(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
