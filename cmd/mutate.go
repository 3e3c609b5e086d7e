package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/account-engine/internal/model"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <id> <insights.json>",
	Short: "Fold an insights JSON file into an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrap(err, "read insights file")
		}
		var in model.Insights
		if err := json.Unmarshal(data, &in); err != nil {
			return eris.Wrap(err, "decode insights file")
		}

		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out, err := svc.Ingest(cmd.Context(), args[0], in)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <id> <actions.json>",
	Short: "Apply a JSON array of actions to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrap(err, "read actions file")
		}
		actions, err := model.DecodeActions(data)
		if err != nil {
			return err
		}

		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out, err := svc.Execute(cmd.Context(), args[0], actions)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var commandCmd = &cobra.Command{
	Use:   "command <id> <text...>",
	Short: "Interpret a plain-language edit and apply it",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out, err := svc.Command(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var (
	analyzeCallID string
	analyzeTitle  string
	analyzeDate   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id> <transcript.txt>",
	Short: "Extract insights from a call transcript with Claude and ingest them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		text, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrap(err, "read transcript")
		}

		callID := analyzeCallID
		if callID == "" {
			callID = strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
		}
		t := model.Transcript{CallID: callID, Title: analyzeTitle, Text: string(text)}
		if analyzeDate != "" {
			d, err := time.Parse("2006-01-02", analyzeDate)
			if err != nil {
				return eris.Wrap(err, "parse --date")
			}
			t.OccurredAt = &d
		}

		svc, st, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out, err := svc.AnalyzeTranscript(cmd.Context(), args[0], t)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCallID, "call-id", "", "call identifier used to dedupe transcripts (default: file name)")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "call title")
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "call date (YYYY-MM-DD)")
	rootCmd.AddCommand(ingestCmd, applyCmd, commandCmd, analyzeCmd)
}
