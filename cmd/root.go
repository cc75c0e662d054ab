package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "monitor",
	Short: "ClinVar release quality monitor",
	Long: `Tracks the quality of successive ClinVar variant summary releases:
computes quality metrics and a bounded score for each release and detects
drift against the previously recorded release.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (defaults are used when omitted)")
}
