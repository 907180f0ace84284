package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/df5602/srt-igt-splits/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the splits with personal best and best segment times",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTracker()
		if err != nil {
			return err
		}

		list := t.Splits()
		if len(list) == 0 {
			ui.Info("No splits defined in %s", t.Path())
			return nil
		}

		bestSegs := t.BestSegments()

		table := ui.Table([]string{"Split", "Percent", "PB", "Best Segment"})
		for i, s := range list {
			segStr := output.Time(nil)
			if i < len(bestSegs) && bestSegs[i] != nil {
				segStr = output.Gold(output.Time(bestSegs[i]))
			}
			table.Append([]string{
				output.Cyan(s.Name),
				fmt.Sprintf("%d%%", s.Percent),
				output.Time(s.Time),
				segStr,
			})
		}
		table.Render()

		if pb := t.PersonalBest(); pb != nil && pb.FinalTime != nil {
			fmt.Fprintln(ui.Out)
			ui.Info("Personal best: %s", output.Green(output.Time(pb.FinalTime)))
		}
		if bpt := t.BestPossibleTime(); bpt != nil {
			ui.Info("Best possible time: %s", output.Time(bpt))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
