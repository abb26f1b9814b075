package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs"
	"github.com/fresh1g1r/fresh1g1r/pkg/storage"
)

// fetchCmd is the parent for per-collection download commands.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the current DAT files from the upstream catalogs",
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

// runFetch downloads one collection into daily-virgin-dat/<collection>/ and
// records the downloaded versions in the state DB.
func runFetch(ctx context.Context, fetcher catalogs.Fetcher) error {
	collection := fetcher.Name()
	destDir := filepath.Join(virginDir(), collection)

	utils.Log.Infof("Fetching %s DAT files into %s", collection, destDir)
	result, err := fetcher.FetchAll(ctx, destDir)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", collection, err)
	}

	utils.Log.Infof("%s: %d downloaded, %d already present, %d superseded file(s) removed",
		collection, len(result.Downloaded), len(result.Skipped), result.Removed)

	db, err := openDB()
	if err != nil {
		utils.Log.Warnf("Could not open state DB, downloads not recorded: %v", err)
		return nil
	}
	defer db.Close()

	for _, path := range result.Downloaded {
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		err := db.RecordDATFile(ctx, storage.DATFile{
			Collection: collection,
			System:     catalogs.SystemName(stem, collection),
			Filename:   base,
		})
		if err != nil {
			utils.Log.Warnf("Could not record %s: %v", base, err)
		}
	}
	return nil
}

// collectionsFromConfig returns the configured collection list.
func collectionsFromConfig() []string {
	return viper.GetStringSlice("collections")
}

func collectionEnabled(name string) bool {
	for _, c := range collectionsFromConfig() {
		if c == name {
			return true
		}
	}
	return false
}
