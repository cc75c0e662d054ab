package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mkoziy/genome/monitor/internal/drift"
	"github.com/mkoziy/genome/monitor/internal/report"
)

var (
	driftCurrent   string
	driftPrevious  string
	driftThreshold float64
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare two saved quality reports",
	Long: `Loads two quality report files and runs drift detection between
them: current against previous.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cur, err := report.Load(driftCurrent)
		if err != nil {
			return err
		}
		prev, err := report.Load(driftPrevious)
		if err != nil {
			return err
		}

		th := drift.DefaultThresholds()
		if driftThreshold > 0 {
			th.RowCountPct = driftThreshold
		}

		verdict, err := drift.Detect(cur.Metrics, prev.Metrics, th)
		if err != nil {
			return err
		}

		fmt.Printf("Drift detected: %v\n", verdict.DriftDetected)
		fmt.Printf("Severity: %s\n", verdict.Severity)
		if len(verdict.MetricsChanged) > 0 {
			fmt.Printf("Changed metrics:\n")
			names := make([]string, 0, len(verdict.MetricsChanged))
			for name := range verdict.MetricsChanged {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %s: %s\n", name, verdict.MetricsChanged[name])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driftCmd)
	driftCmd.Flags().StringVar(&driftCurrent, "current", "",
		"Quality report of the current release (required)")
	driftCmd.Flags().StringVar(&driftPrevious, "previous", "",
		"Quality report of the previous release (required)")
	driftCmd.Flags().Float64VarP(&driftThreshold, "threshold", "t", 0,
		"Row-count drift threshold in percent (default 10)")
	_ = driftCmd.MarkFlagRequired("current")
	_ = driftCmd.MarkFlagRequired("previous")
}
