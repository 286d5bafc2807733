package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KingPinFPV/basarometer-sub000/internal/export"
)

var (
	runCSVPath  string
	runJSONPath string
	runXLSXPath string
	runQuiet    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full reconciliation",
	Long:  "Collects catalogs from all configured portals, verifies a prioritized subset against live sites, merges, dedupes, and grades the result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Init store
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if n, err := st.DeleteExpiredSearches(ctx); err != nil {
			zap.L().Warn("expired search cleanup failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Debug("expired search entries removed", zap.Int("count", n))
		}

		p, err := buildPipeline(st)
		if err != nil {
			return err
		}

		result, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("reconciliation complete",
			zap.String("run_id", result.RunID),
			zap.Bool("success", result.Success),
			zap.Int("base_count", result.BaseCount),
			zap.Int("verified_count", result.VerifiedCount),
			zap.Int("product_count", result.ProductCount()),
			zap.Float64("avg_confidence", result.Quality.AvgConfidence),
		)

		if err := st.SaveProducts(ctx, result.RunID, result.Products); err != nil {
			zap.L().Warn("persist products failed", zap.Error(err))
		}

		if runCSVPath != "" {
			if err := export.WriteCSV(result.Products, runCSVPath); err != nil {
				return eris.Wrap(err, "export csv")
			}
		}
		if runJSONPath != "" {
			if err := export.WriteJSON(result, runJSONPath); err != nil {
				return eris.Wrap(err, "export json")
			}
		}
		if runXLSXPath != "" {
			if err := export.WriteXLSX(result, runXLSXPath); err != nil {
				return eris.Wrap(err, "export xlsx")
			}
		}

		if runQuiet {
			return nil
		}

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "write final products as CSV to this path")
	runCmd.Flags().StringVar(&runJSONPath, "json", "", "write full result as JSON to this path")
	runCmd.Flags().StringVar(&runXLSXPath, "xlsx", "", "write products and quality report as XLSX to this path")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "suppress result JSON on stdout")
	rootCmd.AddCommand(runCmd)
}
