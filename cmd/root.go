// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for odoolink.
// It implements subcommands to log in to a business-object server over
// XML-RPC and to search, read, create, update, delete and export its records,
// using the Cobra CLI framework.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/httperrors"
	"odoolink/cli/internal/logging"

	"github.com/spf13/cobra"
)

var (
	showVersion  bool
	flagProfile  string
	flagOutput   string
	flagLogLevel string
	flagMetrics  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "odoolink",
	Short: "Command-line client for Odoo-style XML-RPC servers",
	Long: `odoolink talks to a business-object server over its XML-RPC API.
Log in once per server profile, then search, read, create, update, delete
and export records of any model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch flagOutput {
		case outputTable, outputJSON, outputYAML:
		default:
			return fmt.Errorf("unknown --output %q (use table, json or yaml)", flagOutput)
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		dumpMetrics()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return versionCmd.RunE(cmd, nil)
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c, err := rootCmd.ExecuteContextC(ctx); err != nil {
		reportError(c.CommandPath(), err)
		dumpMetrics()
		stop()
		os.Exit(1)
	}
}

// reportedError marks an error whose explanation was already printed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// reportError prints err the way its kind deserves.
func reportError(command string, err error) {
	var done reportedError
	if errors.As(err, &done) {
		return
	}
	if rpcerrors.KindOf(err) == rpcerrors.TransportError && !errors.Is(err, context.Canceled) {
		url := ""
		if current != nil {
			if _, p, perr := current.profile(); perr == nil {
				url = p.URL
			}
		}
		_ = httperrors.FormatNetworkError(err, "talking to the server", url)
		return
	}
	if rpcerrors.KindOf(err) != "" {
		logging.PresentCallError(err)
		return
	}
	fmt.Fprintln(os.Stderr, logging.PresentError(command, err))
}

func dumpMetrics() {
	if !flagMetrics || current == nil {
		return
	}
	_ = current.metrics.WriteText(os.Stderr)
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and server version information")
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagProfile, "profile", "p", "", "Server profile to use (default: $ODOOLINK_PROFILE or default_profile)")
	pf.StringVarP(&flagOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off")
	pf.BoolVar(&flagMetrics, "metrics", false, "Print call metrics in Prometheus text format to stderr on exit")
}
