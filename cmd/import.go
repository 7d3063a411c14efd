package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/gaps"
	"github.com/sells-group/prospector/internal/model"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import business records from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		data, err := os.ReadFile(importPath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		var records []model.BusinessRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return eris.Wrap(err, "parse import file")
		}

		created := 0
		for i := range records {
			rec := &records[i]
			if rec.CompanyName == "" {
				zap.L().Warn("skipping record without company name", zap.Int("index", i))
				continue
			}
			rec.Enrichment.Completeness = gaps.Completeness(rec)
			if err := st.CreateRecord(ctx, rec); err != nil {
				zap.L().Error("failed to create record",
					zap.String("company", rec.CompanyName),
					zap.Error(err),
				)
				continue
			}
			created++
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.Int("skipped", len(records)-created),
			zap.String("file", importPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "path to JSON file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
