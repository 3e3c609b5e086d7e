package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/account-engine/internal/crmsync"
	"github.com/sells-group/account-engine/pkg/salesforce"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push accounts to external systems",
}

var syncSalesforceCmd = &cobra.Command{
	Use:   "salesforce <id>",
	Short: "Update the linked Salesforce Account and add missing Contacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("salesforce"); err != nil {
			return err
		}
		client, err := salesforce.Dial(salesforce.JWTConfig{
			LoginURL: cfg.Salesforce.LoginURL,
			Username: cfg.Salesforce.Username,
			ClientID: cfg.Salesforce.ClientID,
			KeyPath:  cfg.Salesforce.KeyPath,
		}, salesforce.WithRateLimit(cfg.Salesforce.RateLimit))
		if err != nil {
			return err
		}

		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		acct, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		res, err := crmsync.New(client).Sync(cmd.Context(), acct)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, item := range res.Applied {
			_, _ = fmt.Fprintf(out, "synced %s\n", item)
		}
		for _, m := range res.Messages() {
			_, _ = fmt.Fprintf(out, "failed %s\n", m)
		}
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncSalesforceCmd)
	rootCmd.AddCommand(syncCmd)
}
