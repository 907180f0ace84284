package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df5602/srt-igt-splits/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Export finished runs to the archive database",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTracker()
		if err != nil {
			return err
		}

		dbPath := viper.GetString("db_path")
		store, err := archive.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open archive database: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate archive database: %w", err)
		}

		count, err := store.ArchiveTracker(ctx, t)
		if err != nil {
			return fmt.Errorf("archive runs: %w", err)
		}

		ui.Success("Archived %d finished runs to %s", count, dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
