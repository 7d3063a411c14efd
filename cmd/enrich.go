package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	enrichID        string
	enrichMaxRounds int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run enrichment for a single record",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Orchestrator.EnrichRecord(ctx, enrichID, enrichMaxRounds)
		if err != nil {
			return eris.Wrap(err, "enrich record")
		}

		zap.L().Info("enrichment complete",
			zap.String("record", enrichID),
			zap.Int("completeness", summary.CompletenessAfter),
			zap.Int("rounds", summary.Rounds),
			zap.Int("search_calls", summary.SearchCalls),
			zap.String("stop_reason", string(summary.StopReason)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichID, "id", "", "record ID (required)")
	enrichCmd.Flags().IntVar(&enrichMaxRounds, "max-rounds", 0, "round limit for this run (default from config)")
	_ = enrichCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(enrichCmd)
}
