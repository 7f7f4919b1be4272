// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"odoolink/cli/internal/config"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutForget bool

// logoutCmd clears the stored password and login state of a profile.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored password of a profile",
	Long: `The logout command removes the password and the last login state of the
selected profile from the OS keychain. With --forget the profile is also
removed from config.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := current.cfg.ProfileName(flagProfile)
		if err := current.auth.Logout(name); err != nil {
			return err
		}
		if logoutForget {
			if _, ok := current.cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			current.cfg.RemoveProfile(name)
			if err := config.Save(current.cfg); err != nil {
				return err
			}
			pterm.Success.Printf("Logged out and removed profile %s\n", name)
			return nil
		}
		pterm.Success.Printf("Logged out of profile %s\n", name)
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutForget, "forget", false, "Also remove the profile from the config file")
	rootCmd.AddCommand(logoutCmd)
}
