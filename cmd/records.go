// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/session"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	recDomain string
	recFields string
	recLimit  int
	recOffset int
	recOrder  string
	recCount  bool
	recValues string
	recArgs   string
	recKwargs string
)

// recordsCmd groups the generic model operations.
var recordsCmd = &cobra.Command{
	Use:     "records",
	Aliases: []string{"rec"},
	Short:   "Search, read, create, update and delete records of any model",
	Long: `The records commands call the model methods of the object endpoint for the
active profile. Domains, values and arguments are given as JSON, for example:

  odoolink records search res.partner --domain '[["is_company","=",true]]' --fields name,email --limit 5
  odoolink records create res.partner --values '{"name":"Azure Interior"}'
  odoolink records write res.partner 7 --values '{"phone":"+1 555 0100"}'`,
}

var recordsSearchCmd = &cobra.Command{
	Use:   "search MODEL",
	Short: "Search records and print the requested fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		domain, err := parseDomain(recDomain)
		if err != nil {
			return err
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}

		if recCount {
			n, err := sess.SearchCount(cmd.Context(), model, domain)
			if err != nil {
				return err
			}
			if flagOutput == outputTable {
				fmt.Println(n)
				return nil
			}
			return render(os.Stdout, flagOutput, map[string]int64{"count": n})
		}

		q := session.Query{
			Domain: domain,
			Fields: splitFields(recFields),
			Limit:  recLimit,
			Offset: recOffset,
			Order:  recOrder,
		}
		current.logger.Debug("search_read", current.logger.Args("model", model, "domain", marshalCompact(domain)))
		stop := startSpinner(staticText("Searching " + model))
		records, err := sess.SearchReadAll(cmd.Context(), model, q)
		stop()
		if err != nil {
			return err
		}
		return render(os.Stdout, flagOutput, records)
	},
}

var recordsReadCmd = &cobra.Command{
	Use:   "read MODEL ID[,ID...]",
	Short: "Read records by id",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		records, err := sess.ReadAll(cmd.Context(), args[0], ids, splitFields(recFields))
		if err != nil {
			return err
		}
		return render(os.Stdout, flagOutput, records)
	},
}

var recordsCreateCmd = &cobra.Command{
	Use:   "create MODEL --values JSON",
	Short: "Create a record and print its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseObject(recValues)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("--values is required")
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		id, err := sess.Create(cmd.Context(), args[0], values)
		if err != nil {
			return err
		}
		if flagOutput == outputTable {
			pterm.Success.Printf("Created %s record %d\n", args[0], id)
			return nil
		}
		return render(os.Stdout, flagOutput, map[string]int64{"id": id})
	},
}

var recordsWriteCmd = &cobra.Command{
	Use:   "write MODEL ID[,ID...] --values JSON",
	Short: "Update records",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		values, err := parseObject(recValues)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("--values is required")
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := sess.Write(cmd.Context(), args[0], ids, values)
		if err != nil {
			return err
		}
		return reportResult("Updated", args[0], ids, ok)
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:     "delete MODEL ID[,ID...]",
	Aliases: []string{"unlink"},
	Short:   "Delete records",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := sess.Unlink(cmd.Context(), args[0], ids)
		if err != nil {
			return err
		}
		return reportResult("Deleted", args[0], ids, ok)
	},
}

var recordsCallCmd = &cobra.Command{
	Use:   "call MODEL METHOD",
	Short: "Call any model method and print the decoded result",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs, err := parseArray(recArgs)
		if err != nil {
			return err
		}
		kwargs, err := parseObject(recKwargs)
		if err != nil {
			return err
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		res, err := session.Execute[any](cmd.Context(), sess, args[0], args[1], callArgs, kwargs)
		if err != nil {
			return err
		}
		if records, ok := asRecords(res); ok {
			return render(os.Stdout, flagOutput, records)
		}
		return render(os.Stdout, flagOutput, res)
	},
}

func reportResult(verb, model string, ids []int64, ok bool) error {
	if !ok {
		return rpcerrors.Newf(rpcerrors.OperationRejected, "%s %v: server returned false", model, ids)
	}
	if flagOutput == outputTable {
		pterm.Success.Printf("%s %s %v\n", verb, model, ids)
		return nil
	}
	return render(os.Stdout, flagOutput, map[string]any{"ok": true, "ids": ids})
}

// asRecords recognizes a decoded list of structs.
func asRecords(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(list))
	for i, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, false
		}
		out[i] = m
	}
	return out, true
}

func init() {
	sf := recordsSearchCmd.Flags()
	sf.StringVarP(&recDomain, "domain", "d", "", "Search domain as a JSON array")
	sf.StringVarP(&recFields, "fields", "f", "", "Comma-separated fields to return (default: all)")
	sf.IntVarP(&recLimit, "limit", "l", 80, "Maximum number of records (0 for no limit)")
	sf.IntVar(&recOffset, "offset", 0, "Number of records to skip")
	sf.StringVar(&recOrder, "order", "", "Sort specification, e.g. \"name desc\"")
	sf.BoolVar(&recCount, "count", false, "Print the number of matching records only")

	recordsReadCmd.Flags().StringVarP(&recFields, "fields", "f", "", "Comma-separated fields to return (default: all)")
	recordsCreateCmd.Flags().StringVar(&recValues, "values", "", "Field values as a JSON object")
	recordsWriteCmd.Flags().StringVar(&recValues, "values", "", "Field values as a JSON object")
	recordsCallCmd.Flags().StringVar(&recArgs, "args", "", "Positional arguments as a JSON array")
	recordsCallCmd.Flags().StringVar(&recKwargs, "kwargs", "", "Keyword arguments as a JSON object")

	recordsCmd.AddCommand(recordsSearchCmd, recordsReadCmd, recordsCreateCmd, recordsWriteCmd, recordsDeleteCmd, recordsCallCmd)
	rootCmd.AddCommand(recordsCmd)
}
