package main

import (
	"github.com/spf13/cobra"

	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/product"
)

var (
	airsFlags        sharedFlags
	airsMeasurements []string
	airsUsername     string
	airsPassword     string
)

var airsCmd = &cobra.Command{
	Use:   "airs",
	Short: "Download AIRS Level-3 daily retrievals",
	Long: "Downloads daily AIRS Level-3 standard retrieval files from the EOSDIS\n" +
		"OPeNDAP archive. Requires an Earthdata account (-u/-p or the\n" +
		"SATDOWNLOAD_CREDENTIALS_* environment variables).",
	RunE: func(cmd *cobra.Command, args []string) error {
		selectors := airsMeasurements
		if len(selectors) == 0 {
			selectors = []string{"SurfAirTemp_A"}
		}

		creds := fetch.Credentials{Username: airsUsername, Password: airsPassword}
		return runDownload(cmd, &airsFlags, "airs", selectors, product.Params{}, creds)
	},
}

func init() {
	addSharedFlags(airsCmd, &airsFlags)
	airsCmd.Flags().StringSliceVarP(&airsMeasurements, "measurements", "m", nil, "retrieval variables to name outputs after")
	airsCmd.Flags().StringVarP(&airsUsername, "username", "u", "", "Earthdata username")
	airsCmd.Flags().StringVarP(&airsPassword, "password", "p", "", "Earthdata password")
	rootCmd.AddCommand(airsCmd)
}
