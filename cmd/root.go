package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/observingClouds/satdownload/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "satdownload",
	Short: "Download satellite observation products over a date range and region",
	Long: "Fetches GOES-16 imagery, AIRS Level-3 retrievals, and Gridsat-B1 grids\n" +
		"from their public archives for a date/time range and geographic bounding\n" +
		"box, writing files under templated names.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
