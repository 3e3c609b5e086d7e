package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/account-engine/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export an account as xlsx, yaml, or json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
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

		out := exportOut
		if out == "" && format == export.FormatXLSX {
			out = acct.ID + format.Ext()
		}
		if out == "" || out == "-" {
			return export.Write(cmd.OutOrStdout(), acct, format)
		}

		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "create export file")
		}
		if err := export.Write(f, acct, format); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "close export file")
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: xlsx, yaml, json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout; <id>.xlsx for xlsx)")
	rootCmd.AddCommand(exportCmd)
}
