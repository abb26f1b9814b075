package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs/nointro"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs/redump"
)

// runCmd is the daily entry point: fetch both collections, then filter.
// A collection that fails to download is logged and skipped; filtering
// proceeds with whatever DAT files are on disk.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch all catalogs and run 1G1R filtering (the daily job)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		proxy, _ := cmd.Flags().GetString("proxy")
		reprocess, _ := cmd.Flags().GetBool("reprocess")

		if collectionEnabled(catalogs.Redump) && !viper.GetBool("redump.skip") {
			fetcher, err := redump.New(viper.GetString("redump.url"), proxy)
			if err != nil {
				return err
			}
			if err := runFetch(ctx, fetcher); err != nil {
				utils.Log.Errorf("Redump fetch failed, using existing files: %v", err)
			}
		}

		if collectionEnabled(catalogs.NoIntro) && !viper.GetBool("nointro.skip") {
			fetcher, err := nointro.New(viper.GetString("nointro.url"), proxy)
			if err != nil {
				return err
			}
			if err := runFetch(ctx, fetcher); err != nil {
				utils.Log.Errorf("No-Intro fetch failed, using existing files: %v", err)
			}
		}

		return runFilter(ctx, reprocess, "")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("reprocess", false, "Reprocess DAT files even when an up-to-date output exists")
}
