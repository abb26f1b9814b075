package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/report"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and maintain the pipeline state database",
}

var dbRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded filter runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")
		collection, _ := cmd.Flags().GetString("collection")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context(), profile, collection)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No filter runs recorded yet.")
			return nil
		}

		fmt.Printf("%-20s %-12s %-10s %-14s %8s %10s  %s\n", "RUN AT", "PROFILE", "COLLECTION", "STATUS", "WINNERS", "EXCLUDED", "SYSTEM")
		for _, r := range runs {
			fmt.Printf("%-20s %-12s %-10s %-14s %8d %10d  %s\n",
				r.RunAt.Format("2006-01-02 15:04:05"), r.Profile, r.Collection, r.Status, r.Winners, r.Excluded, r.System)
		}
		return nil
	},
}

var dbPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old run records and surplus report files",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		removed, err := db.PruneRuns(cmd.Context(), time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		utils.Log.Infof("Removed %d run record(s) older than %d day(s)", removed, days)

		// Trim report directories down to the configured retention.
		keep := viper.GetInt("report.keep")
		dirs, err := filepath.Glob(filepath.Join(reportDir(), "*", "*"))
		if err != nil {
			return err
		}
		total := 0
		for _, dir := range dirs {
			n, err := report.Prune(dir, keep)
			if err != nil {
				utils.Log.Warnf("Could not prune %s: %v", dir, err)
				continue
			}
			total += n
		}
		utils.Log.Infof("Removed %d surplus report file(s)", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbRunsCmd)
	dbCmd.AddCommand(dbPruneCmd)

	dbRunsCmd.Flags().String("profile", "", "Filter by profile name")
	dbRunsCmd.Flags().String("collection", "", "Filter by collection")
	dbPruneCmd.Flags().Int("days", 30, "Remove run records older than this many days")
}
