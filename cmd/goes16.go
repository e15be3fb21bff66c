package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/observingClouds/satdownload/internal/fetch"
	"github.com/observingClouds/satdownload/internal/product"
)

var (
	goes16Flags      sharedFlags
	goes16Channels   []int
	goes16Product    string
	goes16Mesoregion int
)

var goes16Cmd = &cobra.Command{
	Use:   "goes16",
	Short: "Download GOES-16 ABI imagery",
	RunE: func(cmd *cobra.Command, args []string) error {
		if goes16Mesoregion < 0 || goes16Mesoregion > 2 {
			return eris.Errorf("mesoregion must be 1 or 2, got %d", goes16Mesoregion)
		}

		selectors := make([]string, 0, len(goes16Channels))
		for _, ch := range goes16Channels {
			if ch < 1 || ch > 16 {
				return eris.Errorf("channel must be between 1 and 16, got %d", ch)
			}
			selectors = append(selectors, strconv.Itoa(ch))
		}
		if len(selectors) == 0 {
			// L2 products carry no channel code; resolve without one.
			selectors = []string{""}
		}

		params := product.Params{
			Product:    goes16Product,
			Mesoregion: goes16Mesoregion,
		}
		return runDownload(cmd, &goes16Flags, "goes16", selectors, params, fetch.Credentials{})
	},
}

func init() {
	addSharedFlags(goes16Cmd, &goes16Flags)
	goes16Cmd.Flags().IntSliceVarP(&goes16Channels, "channels", "k", nil, "ABI channels to download (1-16)")
	goes16Cmd.Flags().StringVarP(&goes16Product, "product", "p", "", "archive product (default from config, e.g. ABI-L1b-RadF)")
	goes16Cmd.Flags().IntVarP(&goes16Mesoregion, "mesoregion", "m", 0, "mesoscale scene, 1 or 2 (meso products only)")
	rootCmd.AddCommand(goes16Cmd)
}
