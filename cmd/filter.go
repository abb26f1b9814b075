package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/clonelist"
	"github.com/fresh1g1r/fresh1g1r/pkg/pipeline"
	"github.com/fresh1g1r/fresh1g1r/pkg/profile"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Run 1G1R filtering over the downloaded DAT files",
	RunE: func(cmd *cobra.Command, args []string) error {
		reprocess, _ := cmd.Flags().GetBool("reprocess")
		only, _ := cmd.Flags().GetString("profile")
		return runFilter(cmd.Context(), reprocess, only)
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().Bool("reprocess", false, "Reprocess DAT files even when an up-to-date output exists")
	filterCmd.Flags().String("profile", "", "Only run the named profile (default: all)")
}

func runFilter(ctx context.Context, reprocess bool, onlyProfile string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	if onlyProfile != "" {
		profiles = filterProfiles(profiles, onlyProfile)
		if len(profiles) == 0 {
			return fmt.Errorf("unknown profile: %s", onlyProfile)
		}
	}

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	utils.Log.Infof("Profiles: %s", strings.Join(names, ", "))

	overrides, err := loadCloneLists(ctx)
	if err != nil {
		utils.Log.Warnf("Clone lists unavailable, grouping by exact title only: %v", err)
		overrides = nil
	}

	db, err := openDB()
	if err != nil {
		utils.Log.Warnf("Could not open state DB, processing without skip checks: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	result, err := pipeline.Run(ctx, pipeline.Config{
		Profiles:    profiles,
		Collections: collectionsFromConfig(),
		VirginDir:   virginDir(),
		OutputDir:   outputDir(),
		ReportDir:   reportDir(),
		DB:          db,
		Overrides:   overrides,
		Concurrency: viper.GetInt("concurrency"),
		Reprocess:   reprocess,
		ReportKeep:  viper.GetInt("report.keep"),
		Log:         utils.Log,
	})
	if err != nil {
		return err
	}

	counts := result.Counts()
	utils.Log.Infof("Done: %d successful, %d not required, %d no games, %d skipped, %d failed",
		counts["success"], counts["not-required"], counts["no-games"], counts["skipped"], counts["failed"])
	return nil
}

// loadCloneLists merges local clone list files with the optional remote one.
func loadCloneLists(ctx context.Context) (map[string]string, error) {
	merged, err := clonelist.LoadDir(filepath.Join(configDir(), "clonelists"))
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]string, merged.Len())
	for k, v := range merged.Overrides() {
		overrides[k] = v
	}

	if url := viper.GetString("clonelists.url"); url != "" {
		remote, err := clonelist.Fetch(ctx, url)
		if err != nil {
			utils.Log.Warnf("Could not fetch remote clone list: %v", err)
		} else {
			for k, v := range remote.Overrides() {
				overrides[k] = v
			}
		}
	}

	if len(overrides) > 0 {
		utils.Log.Debugf("Loaded %d clone list override(s)", len(overrides))
	}
	return overrides, nil
}

func filterProfiles(profiles []*profile.Profile, name string) []*profile.Profile {
	var out []*profile.Profile
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}
