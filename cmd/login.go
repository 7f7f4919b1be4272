// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"odoolink/cli/internal/config"
	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginURL      string
	loginDatabase string
	loginUser     string
)

// loginCmd authenticates against a server and stores the profile.
// The password is kept in the OS keychain, everything else in config.toml.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against a server and save the profile",
	Long: `The login command authenticates with a URL, database, username and password.
Missing values are asked for interactively; the password can also be given in
$ODOOLINK_PASSWORD. On success the connection settings are saved under the
selected profile (--profile, default "default") and the password is stored in
the OS keychain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := current.cfg.ProfileName(flagProfile)
		p := current.cfg.Profiles[name]
		if loginURL != "" {
			p.URL = loginURL
		}
		if loginDatabase != "" {
			p.Database = loginDatabase
		}
		if loginUser != "" {
			p.Username = loginUser
		}

		reader := bufio.NewReader(os.Stdin)
		var err error
		if p.URL, err = promptIfEmpty(reader, "url", "Server URL (e.g., https://erp.example.com): ", p.URL); err != nil {
			return err
		}
		if p.Database, err = promptIfEmpty(reader, "db", "Database: ", p.Database); err != nil {
			return err
		}
		if p.Username, err = promptIfEmpty(reader, "user", "Username: ", p.Username); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}

		password := os.Getenv(config.EnvPassword)
		if password == "" {
			if !terminal.IsInteractive(os.Stdin) {
				return fmt.Errorf("no password: set %s or run login in a terminal", config.EnvPassword)
			}
			password, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
			if err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		stop := startSpinner(staticText("Authenticating as " + p.Username))
		_, st, err := current.auth.Login(ctx, name, p, password)
		stop()
		if err != nil {
			if errors.Is(err, rpcerrors.ErrAuthenticationFailed) {
				pterm.Error.Println("Login rejected: check database, username and password.")
			}
			return err
		}

		current.cfg.SetProfile(name, p)
		if err := config.Save(current.cfg); err != nil {
			return fmt.Errorf("logged in but could not save profile: %w", err)
		}

		pterm.Success.Printf("Logged in to %s as %s (uid %d, profile %s)\n", st.Database, st.Account, st.UID, name)
		return nil
	},
}

// promptIfEmpty asks for a value on stdin unless one is already set. Without
// a terminal the matching flag is required instead.
func promptIfEmpty(r *bufio.Reader, flag, prompt, value string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	if !terminal.IsInteractive(os.Stdin) {
		return "", fmt.Errorf("--%s is required", flag)
	}
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	terminal.ClearPreviousLines(os.Stdout, len(prompt)+len(line))
	return line, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "Server base URL")
	loginCmd.Flags().StringVar(&loginDatabase, "db", "", "Database name")
	loginCmd.Flags().StringVar(&loginUser, "user", "", "Username (login)")
	rootCmd.AddCommand(loginCmd)
}
