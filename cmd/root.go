package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/profile"
	"github.com/fresh1g1r/fresh1g1r/pkg/storage"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fresh1g1r",
	Short: "Daily 1G1R DAT pipeline for Redump and No-Intro catalogs.",
	Long: `fresh1g1r downloads the current DAT files from Redump and No-Intro,
filters each one down to one preferred ROM per game under the Hearto, PropeR
and McLean profiles, and publishes the filtered DATs and selection reports
in a fixed directory layout.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fresh1g1r.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".fresh1g1r")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.fresh1g1r.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("workdir", ".")
	viper.SetDefault("collections", []string{"redump", "no-intro"})
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("db.path", "fresh1g1r.sqlite")
	viper.SetDefault("redump.url", "")
	viper.SetDefault("redump.skip", false)
	viper.SetDefault("nointro.url", "")
	viper.SetDefault("nointro.skip", false)
	viper.SetDefault("clonelists.url", "")
	viper.SetDefault("report.keep", 7)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// Directory layout under the working dir. Matches what the daily job
// commits: raw downloads, filtered outputs and reports side by side.
func workdir() string {
	return viper.GetString("workdir")
}

func virginDir() string {
	return filepath.Join(workdir(), "daily-virgin-dat")
}

func outputDir() string {
	return filepath.Join(workdir(), "daily-1g1r-dat")
}

func reportDir() string {
	return filepath.Join(workdir(), "report")
}

func configDir() string {
	return filepath.Join(workdir(), "config")
}

func loadProfiles() ([]*profile.Profile, error) {
	return profile.Discover(configDir())
}

func openDB() (*storage.DB, error) {
	path := viper.GetString("db.path")
	if !filepath.IsAbs(path) {
		path = filepath.Join(workdir(), path)
	}
	return storage.Open(path)
}
