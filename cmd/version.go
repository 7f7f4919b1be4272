// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"odoolink/cli/internal/serverinfo"

	"github.com/spf13/cobra"
)

var (
	// Version holds the CLI version information.
	// This value is typically set at build time using -ldflags.
	Version = "0.0.0-dev"
)

// versionCmd prints the CLI version and, when a profile is configured, the
// version reported by the server's common endpoint. No login is needed.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show CLI and server version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, perr := current.profile()
		if perr != nil {
			if flagOutput != outputTable {
				return render(os.Stdout, flagOutput, map[string]string{"cli": Version})
			}
			fmt.Printf("odoolink %s\n", Version)
			return nil
		}

		info, err := serverinfo.Get(cmd.Context(), current.auth.Open(p))
		if err != nil {
			return reportedError{serverinfo.FormatUnreachable(p.URL, err)}
		}
		if flagOutput != outputTable {
			return render(os.Stdout, flagOutput, map[string]any{"cli": Version, "server": info})
		}
		fmt.Printf("odoolink %s\n", Version)
		fmt.Printf("server   %s (%s)\n", info, p.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
