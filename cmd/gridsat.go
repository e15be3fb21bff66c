package main

import (
	"github.com/spf13/cobra"

	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/product"
)

var gridsatFlags sharedFlags

var gridsatCmd = &cobra.Command{
	Use:   "gridsat",
	Short: "Download Gridsat-B1 infrared brightness-temperature grids",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The archive holds one irwin_cdr file per three-hour slot.
		return runDownload(cmd, &gridsatFlags, "gridsat", []string{"irwin_cdr"}, product.Params{}, fetch.Credentials{})
	},
}

func init() {
	addSharedFlags(gridsatCmd, &gridsatFlags)
	rootCmd.AddCommand(gridsatCmd)
}
