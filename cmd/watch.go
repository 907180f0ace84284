package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df5602/srt-igt-splits/internal/display"
	"github.com/df5602/srt-igt-splits/internal/igt"
	"github.com/df5602/srt-igt-splits/internal/splits"
)

var (
	watchWindow  int
	watchCompare bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track in-game-time readings from stdin",
	Long: `watch reads one in-game-time reading per line from stdin, in the
form "117% 3:03:23", and feeds it to the run tracker. Each reading
updates the current run and re-renders the split view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTracker()
		if err != nil {
			return err
		}

		windowSize := watchWindow
		if windowSize <= 0 {
			windowSize = viper.GetInt("display.window_size")
		}

		return watchLoop(t, cmd.InOrStdin(), windowSize, watchCompare)
	},
}

func watchLoop(t *splits.Tracker, in io.Reader, windowSize int, compare bool) error {
	renderer := display.NewRenderer()
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		current, err := igt.Parse(line)
		if err != nil {
			ui.VerboseLog("skipping malformed reading %q: %v", line, err)
			continue
		}

		if err := t.Update(current); err != nil {
			ui.Warning("save failed, continuing with in-memory state: %v", err)
		}

		if compare {
			if cl := display.CompareLine(t, current); cl != "" {
				fmt.Fprintln(ui.Out, cl)
			}
			continue
		}

		for _, l := range renderer.RenderWindow(t, current, windowSize) {
			fmt.Fprintln(ui.Out, l)
		}
		fmt.Fprintln(ui.Out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func init() {
	watchCmd.Flags().IntVar(&watchWindow, "window", 0, "Split view window size (default from config)")
	watchCmd.Flags().BoolVar(&watchCompare, "compare", false, "One-line comparison against PB instead of the split view")
	rootCmd.AddCommand(watchCmd)
}
