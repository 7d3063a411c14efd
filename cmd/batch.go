package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/scheduler"
)

var (
	batchLimit           int
	batchMinCompleteness int
	batchMaxCompleteness int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich a batch of stale or incomplete records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Scheduler.Run(ctx, scheduler.Params{
			BatchSize:       batchLimit,
			MinCompleteness: batchMinCompleteness,
			MaxCompleteness: batchMaxCompleteness,
		})
		if err != nil {
			return eris.Wrap(err, "run batch")
		}

		zap.L().Info("batch complete",
			zap.Int("selected", result.Selected),
			zap.Int("enriched", result.Enriched),
			zap.Int("failed", result.Failed),
			zap.Bool("stopped_early", result.StoppedEarly),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max records to process (default from config)")
	batchCmd.Flags().IntVar(&batchMinCompleteness, "min-completeness", 0, "only select records at or above this completeness")
	batchCmd.Flags().IntVar(&batchMaxCompleteness, "max-completeness", 0, "only select records at or below this completeness (default: target)")
	rootCmd.AddCommand(batchCmd)
}
