// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"odoolink/cli/internal/repository"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	partnerName      string
	partnerEmail     string
	partnerPhone     string
	partnerCompany   bool
	partnerParent    int64
	partnerLimit     int
	partnerCompanies bool
)

// partnersCmd works with contacts through the typed repository.
var partnersCmd = &cobra.Command{
	Use:     "partners",
	Aliases: []string{"contacts"},
	Short:   "List, show and create contacts (res.partner)",
}

var partnersListCmd = &cobra.Command{
	Use:   "list [NAME]",
	Short: "List contacts, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := []any{}
		if len(args) == 1 {
			domain = append(domain, []any{"name", "ilike", args[0]})
		}
		if partnerCompanies {
			domain = append(domain, []any{"is_company", "=", true})
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		repo := repository.NewPartners(sess)
		partners, err := repo.Search(cmd.Context(), domain, partnerLimit)
		if err != nil {
			return err
		}
		if flagOutput != outputTable {
			return render(os.Stdout, flagOutput, partners)
		}
		return renderPartners(partners)
	},
}

var partnersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one contact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		p, ok, err := repository.NewPartners(sess).GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("partner %d not found", id)
		}
		if flagOutput != outputTable {
			return render(os.Stdout, flagOutput, p)
		}
		return renderPartners([]repository.Partner{p})
	},
}

var partnersCreateCmd = &cobra.Command{
	Use:   "create --name NAME",
	Short: "Create a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if partnerName == "" {
			return fmt.Errorf("--name is required")
		}
		p := repository.Partner{
			Name:      partnerName,
			Email:     partnerEmail,
			Phone:     partnerPhone,
			IsCompany: partnerCompany,
		}
		p.Parent.ID = partnerParent
		sess, err := current.connect(cmd.Context())
		if err != nil {
			return err
		}
		id, err := repository.NewPartners(sess).Create(cmd.Context(), &p)
		if err != nil {
			return err
		}
		if flagOutput != outputTable {
			return render(os.Stdout, flagOutput, map[string]int64{"id": id})
		}
		pterm.Success.Printf("Created partner %d\n", id)
		return nil
	},
}

func renderPartners(partners []repository.Partner) error {
	if len(partners) == 0 {
		fmt.Println("No partners.")
		return nil
	}
	data := pterm.TableData{{"id", "name", "email", "phone", "company", "parent"}}
	for _, p := range partners {
		company := ""
		if p.IsCompany {
			company = "yes"
		}
		data = append(data, []string{
			strconv.FormatInt(p.ID, 10), p.Name, p.Email, p.Phone, company, p.Parent.Name,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func init() {
	partnersListCmd.Flags().IntVarP(&partnerLimit, "limit", "l", 50, "Maximum number of contacts (0 for no limit)")
	partnersListCmd.Flags().BoolVar(&partnerCompanies, "companies", false, "Only list companies")

	cf := partnersCreateCmd.Flags()
	cf.StringVar(&partnerName, "name", "", "Contact name")
	cf.StringVar(&partnerEmail, "email", "", "Email address")
	cf.StringVar(&partnerPhone, "phone", "", "Phone number")
	cf.BoolVar(&partnerCompany, "company", false, "Create a company instead of a person")
	cf.Int64Var(&partnerParent, "parent", 0, "Id of the parent company")

	partnersCmd.AddCommand(partnersListCmd, partnersShowCmd, partnersCreateCmd)
	rootCmd.AddCommand(partnersCmd)
}
