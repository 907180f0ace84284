package cmd

import (
	"github.com/spf13/cobra"

	"github.com/df5602/srt-igt-splits/internal/output"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTracker()
		if err != nil {
			return err
		}

		runs := t.Runs()
		if len(runs) == 0 {
			ui.Info("No runs recorded yet")
			return nil
		}

		var pbID string
		if pb := t.PersonalBest(); pb != nil {
			pbID = pb.ID.String()
		}

		table := ui.Table([]string{"Started", "Finished", "Final Time", ""})
		for _, run := range runs {
			finished := "-"
			if run.EndTime != nil {
				finished = run.EndTime.Local().Format("2006-01-02 15:04")
			}
			marker := ""
			if run.ID.String() == pbID {
				marker = output.Green("PB")
			}
			table.Append([]string{
				run.StartTime.Local().Format("2006-01-02 15:04"),
				finished,
				output.Time(run.FinalTime),
				marker,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
