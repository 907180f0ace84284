package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df5602/srt-igt-splits/internal/archive"
	"github.com/df5602/srt-igt-splits/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics over archived runs",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		runStats, err := store.RunStats(ctx)
		if err != nil {
			return err
		}
		if runStats.Total == 0 {
			ui.Info("No archived runs in %s (run `srt-splits archive` first)", dbPath)
			return nil
		}

		ui.Info("Archived runs: %d", runStats.Total)
		if runStats.BestSeconds != nil {
			ui.Info("Best:  %s", output.Green(formatSeconds(*runStats.BestSeconds)))
		}
		if runStats.MeanSeconds != nil {
			ui.Info("Mean:  %s", formatSeconds(int64(*runStats.MeanSeconds)))
		}
		if runStats.WorstSeconds != nil {
			ui.Info("Worst: %s", formatSeconds(*runStats.WorstSeconds))
		}

		splitStats, err := store.SplitStats(ctx)
		if err != nil {
			return err
		}
		if len(splitStats) == 0 {
			return nil
		}

		fmt.Fprintln(ui.Out)
		table := ui.Table([]string{"Split", "Percent", "Attempts", "Best", "Mean"})
		for _, st := range splitStats {
			table.Append([]string{
				output.Cyan(st.Name),
				fmt.Sprintf("%d%%", st.Percent),
				fmt.Sprintf("%d", st.Attempts),
				formatSeconds(st.BestSeconds),
				formatSeconds(int64(st.MeanSeconds)),
			})
		}
		table.Render()
		return nil
	},
}

func formatSeconds(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	return output.Time(&d)
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
