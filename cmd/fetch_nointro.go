package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs/nointro"
)

var fetchNoIntroCmd = &cobra.Command{
	Use:   "no-intro",
	Short: "Download the cartridge DAT daily pack from datomatic.no-intro.org",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, _ := cmd.Flags().GetString("proxy")
		fetcher, err := nointro.New(viper.GetString("nointro.url"), proxy)
		if err != nil {
			return err
		}
		return runFetch(cmd.Context(), fetcher)
	},
}

func init() {
	fetchCmd.AddCommand(fetchNoIntroCmd)
}
