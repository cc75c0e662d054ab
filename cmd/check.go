package cmd

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mkoziy/genome/monitor/internal/dataset"
	"github.com/mkoziy/genome/monitor/internal/metrics"
	"github.com/mkoziy/genome/monitor/internal/scoring"
)

var (
	checkFile    string
	checkVerbose bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compute metrics and score for a local file",
	Long: `Assesses a single release file without touching the snapshot
registry: no drift detection, nothing stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		table, err := dataset.Load(checkFile)
		if err != nil {
			return err
		}

		rec, err := metrics.Compute(table, cfg.Dataset)
		if err != nil {
			return err
		}
		score := scoring.Compute(rec, cfg.Quality.Weights)

		fmt.Printf("File: %s\n", checkFile)
		fmt.Printf("- Rows: %s\n", humanize.Comma(int64(rec.RowCount)))
		fmt.Printf("- Columns: %d\n", rec.ColumnCount)
		fmt.Printf("- Null percentage (avg): %.1f%%\n", rec.NullPctAvg)
		fmt.Printf("- Duplicate rows: %s\n", humanize.Comma(int64(rec.DuplicateCount)))
		if rec.Domain != nil {
			fmt.Printf("- Conflicting rows: %s\n", humanize.Comma(int64(rec.Domain.ConflictingCount)))
		}
		fmt.Printf("- Quality score: %.1f (completeness -%.1f, conflicts -%.1f, confidence +%.1f)\n",
			score.Value, score.CompletenessPenalty, score.ConflictPenalty, score.ConfidenceBonus)

		if checkVerbose {
			fmt.Printf("\nNull percentage by column:\n")
			cols := make([]string, 0, len(rec.NullPctByColumn))
			for col := range rec.NullPctByColumn {
				cols = append(cols, col)
			}
			sort.Strings(cols)
			for _, col := range cols {
				fmt.Printf("  %s: %.1f%%\n", col, rec.NullPctByColumn[col])
			}
			if rec.Domain != nil {
				fmt.Printf("\nSignificance distribution:\n")
				printDistribution(rec.Domain.CategoryDistribution)
				fmt.Printf("\nReview status distribution:\n")
				printDistribution(rec.Domain.ReviewStatusDistribution)
			}
		}
		return nil
	},
}

func printDistribution(dist map[string]int) {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, humanize.Comma(int64(dist[k])))
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "",
		"Release file to assess (required)")
	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false,
		"Display per-column and distribution details")
	_ = checkCmd.MarkFlagRequired("file")
}
