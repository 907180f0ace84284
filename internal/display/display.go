// Package display renders the live split view: a window of splits centered
// on the current one, with per-split deltas against the personal best and
// gold highlighting for new best segments.
package display

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/df5602/srt-igt-splits/internal/igt"
	"github.com/df5602/srt-igt-splits/internal/output"
	"github.com/df5602/srt-igt-splits/internal/splits"
)

// maxNameWidth caps the name column so one long split name does not push the
// times off screen.
const maxNameWidth = 25

// NameWidth returns the width of the name column: the longest split name,
// capped at maxNameWidth display cells.
func NameWidth(list []splits.Split) int {
	width := 0
	for _, s := range list {
		if w := runewidth.StringWidth(s.Name); w > width {
			width = w
		}
	}
	if width > maxNameWidth {
		width = maxNameWidth
	}
	return width
}

// TruncateName shortens a name to the given display width, appending ".."
// when it had to cut.
func TruncateName(name string, width int) string {
	if runewidth.StringWidth(name) <= width {
		return name
	}
	return runewidth.Truncate(name, width, "..")
}

// PadName pads a name on the right to the given display width.
func PadName(name string, width int) string {
	return runewidth.FillRight(name, width)
}

// Renderer holds the per-run snapshots needed to render a stable split view.
// PB times and best segments are snapshotted when a new run starts, so a
// mid-run PB does not shift the comparisons under the player.
type Renderer struct {
	lastRunID       *uuid.UUID
	pbSnapshot      []*time.Duration
	bestSegSnapshot []*time.Duration
}

// NewRenderer creates an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// CompareLine renders a one-line comparison of the current reading against
// PB, or "" when there is no baseline to compare against.
func CompareLine(t *splits.Tracker, current igt.Time) string {
	delta, split, ok := t.Compare(current)
	if !ok {
		return ""
	}
	width := NameWidth(t.Splits())
	name := PadName(TruncateName(split.Name, width), width)
	return fmt.Sprintf("%s %8s %8s", name, output.Delta(delta, false), igt.FormatDuration(current.Duration))
}

// RenderWindow renders a split view of windowSize lines centered on the
// split matching the current reading, followed by the best possible time.
// Returns nil when the reading matches no split.
func (r *Renderer) RenderWindow(t *splits.Tracker, current igt.Time, windowSize int) []string {
	// Snapshot PB and best segments when a new run starts.
	if active := t.ActiveRun(); active != nil {
		if r.lastRunID == nil || *r.lastRunID != active.ID {
			id := active.ID
			r.lastRunID = &id
			r.pbSnapshot = nil
			for _, s := range t.Splits() {
				r.pbSnapshot = append(r.pbSnapshot, copyDuration(s.Time))
			}
			r.bestSegSnapshot = append([]*time.Duration(nil), t.BestSegments()...)
		}
	}

	list := t.Splits()
	if len(list) == 0 {
		return nil
	}

	currentIndex := -1
	for i := range list {
		if list[i].Percent == current.Percent {
			currentIndex = i
			break
		}
	}
	if currentIndex == -1 {
		return nil
	}

	start := 0
	if half := windowSize / 2; currentIndex >= half {
		start = currentIndex - half
		max := len(list) - windowSize
		if max < 0 {
			max = 0
		}
		if start > max {
			start = max
		}
	}
	end := start + windowSize
	if end > len(list) {
		end = len(list)
	}

	bestSegs := t.BestSegments()
	nameWidth := NameWidth(list)
	var lines []string

	for idx := start; idx < end; idx++ {
		split := list[idx]
		pbTime := r.snapshotPB(idx)

		var rowTime *time.Duration
		var delta *int64
		switch {
		case idx < currentIndex:
			// Past split: the time this run recorded there.
			rowTime = r.runTime(split)
			if rowTime != nil && pbTime != nil {
				d := int64(*rowTime/time.Second) - int64(*pbTime/time.Second)
				delta = &d
			}
		case idx == currentIndex:
			d := current.Duration
			rowTime = &d
			if pbTime != nil {
				dd := int64(current.Duration/time.Second) - int64(*pbTime/time.Second)
				delta = &dd
			}
		default:
			// Future split: show the PB snapshot.
			rowTime = pbTime
		}

		gold := r.isGold(idx, bestSegs)

		name := PadName(TruncateName(split.Name, nameWidth), nameWidth)
		deltaStr := "      "
		if delta != nil {
			deltaStr = output.Delta(*delta, gold)
		}
		lines = append(lines, fmt.Sprintf("%s %8s %8s", name, deltaStr, output.Time(rowTime)))
	}

	// Best possible time below the window.
	lines = append(lines, "")
	bptName := PadName("BPT:", nameWidth)
	lines = append(lines, fmt.Sprintf("%s %8s %8s", bptName, "      ", output.Time(t.BestPossibleTime())))

	return lines
}

// runTime looks up the current run's recorded time at the given split.
func (r *Renderer) runTime(split splits.Split) *time.Duration {
	if r.lastRunID == nil {
		return nil
	}
	for _, hs := range split.History {
		if hs.RunID == *r.lastRunID {
			d := hs.Duration
			return &d
		}
	}
	return nil
}

// isGold reports whether the current run set a new best segment at idx
// compared to the snapshot taken at run start.
func (r *Renderer) isGold(idx int, bestSegs []*time.Duration) bool {
	if idx >= len(bestSegs) || bestSegs[idx] == nil {
		return false
	}
	if idx >= len(r.bestSegSnapshot) || r.bestSegSnapshot[idx] == nil {
		// No previous best: any recorded segment is a gold.
		return true
	}
	return *bestSegs[idx] < *r.bestSegSnapshot[idx]
}

func (r *Renderer) snapshotPB(idx int) *time.Duration {
	if idx >= len(r.pbSnapshot) {
		return nil
	}
	return r.pbSnapshot[idx]
}

func copyDuration(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
