package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var whoamiCheck bool

// whoamiCmd shows the stored login of the active profile. With --check it
// authenticates again to confirm the credentials still work.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account of the active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := current.cfg.ProfileName(flagProfile)
		st, ok, err := current.auth.WhoAmI(name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Printf("   Run 'odoolink login --profile %s' to get started.\n", name)
			return nil
		}

		if whoamiCheck {
			sess, err := current.connect(cmd.Context())
			if err != nil {
				return err
			}
			st.UID = sess.State().UID
		}

		if flagOutput != outputTable {
			return render(os.Stdout, flagOutput, st)
		}
		fmt.Printf("👤 %s on %s/%s (uid %d, profile %s)\n", st.Account, st.URL, st.Database, st.UID, name)
		if whoamiCheck {
			pterm.Success.Println("Credentials verified")
		} else {
			fmt.Printf("   Last login %s\n", st.At.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	whoamiCmd.Flags().BoolVar(&whoamiCheck, "check", false, "Authenticate again to verify the stored credentials")
	rootCmd.AddCommand(whoamiCmd)
}
