package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize filter run outcomes per profile and collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No filter runs recorded yet.")
			return nil
		}

		fmt.Printf("%-12s %-10s %-14s %8s %10s %10s\n", "PROFILE", "COLLECTION", "STATUS", "SYSTEMS", "WINNERS", "EXCLUDED")
		for _, s := range stats {
			fmt.Printf("%-12s %-10s %-14s %8d %10d %10d\n", s.Profile, s.Collection, s.Status, s.Count, s.Winners, s.Excluded)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
