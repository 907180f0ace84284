package splits

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Fatal validation errors. Everything else validate touches is repaired in
// place without being surfaced.
var (
	ErrDuplicatePercent = errors.New("splits contain duplicate percents")
	ErrDuplicateRunID   = errors.New("runs contain duplicate ids")
)

// validate enforces the aggregate invariants after construction or load. It
// runs the repairs in a fixed order and never discards run or history data:
// beyond the two fatal checks it only reorders entries and fills gaps.
func (t *Tracker) validate() error {
	// Splits sorted by percent.
	sort.Slice(t.splits, func(i, j int) bool {
		return t.splits[i].Percent < t.splits[j].Percent
	})

	// No duplicate percents. Relies on the sort above.
	for i := 1; i < len(t.splits); i++ {
		if t.splits[i-1].Percent == t.splits[i].Percent {
			return fmt.Errorf("%w: %d", ErrDuplicatePercent, t.splits[i].Percent)
		}
	}

	// Runs sorted by start time.
	sort.SliceStable(t.runs, func(i, j int) bool {
		return t.runs[i].StartTime.Before(t.runs[j].StartTime)
	})

	// No duplicate run ids. Also builds the run id -> position map used to
	// order history entries below.
	runIndices := make(map[uuid.UUID]int, len(t.runs))
	for idx, run := range t.runs {
		if _, exists := runIndices[run.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateRunID, run.ID)
		}
		runIndices[run.ID] = idx
	}

	// A set personal best must reference a run in runs; backfill if missing.
	if pb := t.personalBest; pb != nil {
		if _, ok := runIndices[pb.ID]; !ok {
			t.runs = append(t.runs, *pb)
			runIndices[pb.ID] = len(t.runs) - 1
		}
	}

	// History sorted by run order (entries for unknown runs sort first) and
	// deduplicated per run id. On duplicates the larger duration wins.
	runIndex := func(id uuid.UUID) int {
		if idx, ok := runIndices[id]; ok {
			return idx
		}
		return -1
	}
	for i := range t.splits {
		history := t.splits[i].History
		sort.SliceStable(history, func(a, b int) bool {
			idxA, idxB := runIndex(history[a].RunID), runIndex(history[b].RunID)
			if idxA != idxB {
				return idxA < idxB
			}
			return history[a].Duration > history[b].Duration
		})

		deduped := history[:0]
		for _, hs := range history {
			if n := len(deduped); n > 0 && deduped[n-1].RunID == hs.RunID {
				continue
			}
			deduped = append(deduped, hs)
		}
		t.splits[i].History = deduped
	}

	// The final split's history must agree with every recorded final time.
	if len(t.splits) > 0 {
		finalSplit := &t.splits[len(t.splits)-1]
		for _, run := range t.runs {
			if run.FinalTime == nil {
				continue
			}
			found := false
			for j := range finalSplit.History {
				if finalSplit.History[j].RunID == run.ID {
					finalSplit.History[j].Duration = *run.FinalTime
					found = true
					break
				}
			}
			if !found {
				finalSplit.History = append(finalSplit.History, HistoricalSplit{
					RunID:    run.ID,
					Duration: *run.FinalTime,
				})
			}
		}
		sort.SliceStable(finalSplit.History, func(a, b int) bool {
			return runIndex(finalSplit.History[a].RunID) < runIndex(finalSplit.History[b].RunID)
		})
	}

	// PB split times follow from the personal best's history. Without a
	// personal best there is nothing to recompute from; times migrated from
	// a v1 file are kept as the baseline rather than discarded.
	if t.personalBest != nil {
		for i := range t.splits {
			split := &t.splits[i]
			split.Time = nil
			for _, hs := range split.History {
				if hs.RunID == t.personalBest.ID {
					d := hs.Duration
					split.Time = &d
					break
				}
			}
		}
	}

	return nil
}
