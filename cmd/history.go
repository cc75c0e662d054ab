package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mkoziy/genome/monitor/internal/database"
	"github.com/mkoziy/genome/monitor/internal/migrations"
	"github.com/mkoziy/genome/monitor/internal/registry"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored quality snapshots",
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

		snaps, err := registry.ListSnapshots(ctx, db, cfg.Source, historyLimit)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Printf("No snapshots stored for source %q\n", cfg.Source)
			return nil
		}

		for _, snap := range snaps {
			fmt.Printf("%s  %s  rows=%s  score=%.1f\n",
				snap.GeneratedAt.Format("2006-01-02 15:04"),
				snap.SnapshotID,
				humanize.Comma(int64(snap.RowCount)),
				snap.QualityScore)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"Maximum number of snapshots to list")
}
