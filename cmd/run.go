package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mkoziy/genome/monitor/internal/config"
	"github.com/mkoziy/genome/monitor/internal/database"
	"github.com/mkoziy/genome/monitor/internal/migrations"
	"github.com/mkoziy/genome/monitor/internal/pipeline"
)

var runDataFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full quality monitoring pipeline",
	Long: `Downloads the latest release (or uses a local file), computes quality
metrics and score, detects drift against the previous snapshot, and stores
the report in the snapshot registry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.NewDB(cfg.Storage.DSN, cfg.Storage.Debug)
		if err != nil {
			return fmt.Errorf("open registry db: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()

		ctx := context.Background()
		if err := migrations.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrate registry db: %w", err)
		}

		result, err := pipeline.New(cfg, db).Run(ctx, runDataFile)
		if err != nil {
			return err
		}

		rec := result.Report.Metrics
		fmt.Printf("\nRelease: %s\n", result.DataFile)
		fmt.Printf("- Rows: %s\n", humanize.Comma(int64(rec.RowCount)))
		fmt.Printf("- Columns: %d\n", rec.ColumnCount)
		fmt.Printf("- Quality score: %.1f\n", result.Report.Score.Value)
		if result.Verdict != nil {
			fmt.Printf("- Drift: %v (severity %s)\n", result.Verdict.DriftDetected, result.Verdict.Severity)
		} else {
			fmt.Printf("- Drift: no baseline yet\n")
		}
		fmt.Printf("- Report: %s\n", result.ReportPath)
		return nil
	},
}

func loadConfig() (config.Config, error) {
	if cfgFile == "" {
		log.Printf("No config file given, using defaults")
		return config.Default(), nil
	}
	return config.LoadFile(cfgFile)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runDataFile, "file", "f", "",
		"Local release file to assess instead of downloading")
}
