package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs/redump"
)

var fetchRedumpCmd = &cobra.Command{
	Use:   "redump",
	Short: "Download disc DAT files from redump.org",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, _ := cmd.Flags().GetString("proxy")
		fetcher, err := redump.New(viper.GetString("redump.url"), proxy)
		if err != nil {
			return err
		}
		return runFetch(cmd.Context(), fetcher)
	},
}

func init() {
	fetchCmd.AddCommand(fetchRedumpCmd)
}
