package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/account-engine/internal/migrate"
)

var (
	migrateFrom    string
	migrateTo      string
	migrateFromURL string
	migrateToURL   string
	migrateDryRun  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy every account from one store to another",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}
		if migrateFrom == migrateTo && migrateFromURL == migrateToURL {
			return eris.New("source and destination are the same store")
		}
		ctx := cmd.Context()

		from, err := openStore(ctx, cfg.Store, migrateFrom, migrateFromURL)
		if err != nil {
			return eris.Wrap(err, "open source store")
		}
		defer from.Close() //nolint:errcheck

		to, err := openStore(ctx, cfg.Store, migrateTo, migrateToURL)
		if err != nil {
			return eris.Wrap(err, "open destination store")
		}
		defer to.Close() //nolint:errcheck

		res, err := migrate.Run(ctx, from, to, migrate.Config{
			Concurrency: cfg.Migrate.Concurrency,
			RateLimit:   cfg.Migrate.RateLimit,
			DryRun:      migrateDryRun,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Copied %d accounts", len(res.Applied))
		if res.Partial() {
			_, _ = fmt.Fprintf(out, " with %d errors:\n", len(res.Errors))
			for _, m := range res.Messages() {
				_, _ = fmt.Fprintf(out, "  - %s\n", m)
			}
			return nil
		}
		_, _ = fmt.Fprintln(out)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "sqlite", "source driver: sqlite, redis, postgres")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "postgres", "destination driver: sqlite, redis, postgres")
	migrateCmd.Flags().StringVar(&migrateFromURL, "from-url", "", "source location (default from config)")
	migrateCmd.Flags().StringVar(&migrateToURL, "to-url", "", "destination location (default from config)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "list accounts without writing")
	rootCmd.AddCommand(migrateCmd)
}
