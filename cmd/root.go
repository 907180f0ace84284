package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df5602/srt-igt-splits/internal/output"
	"github.com/df5602/srt-igt-splits/internal/splits"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "srt-splits",
	Short: "Track in-game-time splits across speedrun attempts",
	Long: `srt-splits tracks speedrun attempts from in-game-time readings.
It records per-checkpoint times for every run, keeps the personal best,
and renders a live split view with deltas and best segments.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/srt-splits/config.yaml)")
	rootCmd.PersistentFlags().String("splits", "", "Splits file (default from config)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "srt-splits")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SRT_SPLITS")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "srt-splits")

	viper.SetDefault("splits_file", filepath.Join(defaultConfigDir, "splits.json"))
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "archive.db"))
	viper.SetDefault("display.window_size", 5)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// splitsPath resolves the splits file path: --splits flag, then config.
func splitsPath() string {
	if p, _ := rootCmd.PersistentFlags().GetString("splits"); p != "" {
		return p
	}
	return viper.GetString("splits_file")
}

// loadTracker loads the splits file configured for this invocation.
func loadTracker() (*splits.Tracker, error) {
	path := splitsPath()
	t, err := splits.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load splits file %s: %w", path, err)
	}
	return t, nil
}
