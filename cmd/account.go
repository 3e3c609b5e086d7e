package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Create, inspect, and delete accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		acct, err := svc.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), acct)
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		accts, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tNAME\tSTAGE\tSTAKEHOLDERS\tOPEN GAPS\tUPDATED")
		for _, a := range accts {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				a.ID, a.Name, a.Stage, len(a.Stakeholders), len(a.OpenGaps()),
				a.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var accountShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an account as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		acct, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), acct)
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var accountLinkCmd = &cobra.Command{
	Use:   "link <id> <salesforce-id>",
	Short: "Link an account to a Salesforce Account record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		acct, err := svc.LinkSalesforce(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Linked %s to %s\n", acct.ID, acct.SalesforceID)
		return nil
	},
}

func init() {
	accountCmd.AddCommand(accountCreateCmd, accountListCmd, accountShowCmd, accountDeleteCmd, accountLinkCmd)
	rootCmd.AddCommand(accountCmd)
}
