// Package splits holds the run tracking core: the split/run data model, the
// sample-driven run lifecycle, invariant validation, and the versioned splits
// file.
package splits

import (
	"time"

	"github.com/google/uuid"

	"github.com/df5602/srt-igt-splits/internal/igt"
)

// ActiveRun is the in-progress (or just finished) attempt. It is transient:
// it only exists in memory and is never written to the splits file.
type ActiveRun struct {
	ID          uuid.UUID
	StartTime   time.Time
	EndTime     *time.Time
	LatestSplit igt.Time
}

// RunSummary records one attempt. EndTime and FinalTime stay nil for runs
// that were reset before reaching the final split.
type RunSummary struct {
	ID        uuid.UUID
	StartTime time.Time
	EndTime   *time.Time
	FinalTime *time.Duration
}

// HistoricalSplit is the recorded time at one split for one run.
type HistoricalSplit struct {
	RunID    uuid.UUID
	Duration time.Duration
}

// Split is one checkpoint of the route. Time is the personal-best time at
// this checkpoint, nil when there is no personal best (or the PB run never
// passed it).
type Split struct {
	Name    string
	Percent uint32
	Time    *time.Duration
	History []HistoricalSplit
}

// Tracker is the aggregate root: the full split set, run history, personal
// best, and the currently active run. It has a single owner (the sample loop)
// and is not safe for concurrent use.
type Tracker struct {
	path         string
	activeRun    *ActiveRun
	personalBest *RunSummary
	runs         []RunSummary
	splits       []Split
}

// New constructs an empty Tracker with no backing file.
func New() *Tracker {
	return &Tracker{}
}

// Create constructs a Tracker for the given split set and backing file path.
func Create(path string, list []Split) (*Tracker, error) {
	t := &Tracker{path: path, splits: list}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateWithHistory constructs a Tracker with pre-existing run history.
func CreateWithHistory(path string, personalBest *RunSummary, runs []RunSummary, list []Split) (*Tracker, error) {
	t := &Tracker{path: path, personalBest: personalBest, runs: runs, splits: list}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the backing file path, empty if none.
func (t *Tracker) Path() string { return t.path }

// ActiveRun returns the current attempt, nil when none is in progress.
func (t *Tracker) ActiveRun() *ActiveRun { return t.activeRun }

// PersonalBest returns the fastest finished run, nil when no run has
// finished yet.
func (t *Tracker) PersonalBest() *RunSummary { return t.personalBest }

// Runs returns all recorded attempts, ordered by start time.
func (t *Tracker) Runs() []RunSummary { return t.runs }

// Splits returns the splits ordered by percent.
func (t *Tracker) Splits() []Split { return t.splits }

func (t *Tracker) findByPercent(percent uint32) *Split {
	for i := range t.splits {
		if t.splits[i].Percent == percent {
			return &t.splits[i]
		}
	}
	return nil
}

func (t *Tracker) isFinalSplit(percent uint32) bool {
	return len(t.splits) > 0 && t.splits[len(t.splits)-1].Percent == percent
}

// Compare returns the delta in seconds between the current reading and the
// personal-best time at the matching split (positive = behind PB). The third
// return is false when the percent matches no split or the split has no PB
// time yet; callers omit the comparison in that case.
func (t *Tracker) Compare(current igt.Time) (int64, *Split, bool) {
	split := t.findByPercent(current.Percent)
	if split == nil || split.Time == nil {
		return 0, nil, false
	}
	delta := int64(current.Duration/time.Second) - int64(*split.Time/time.Second)
	return delta, split, true
}

func (t *Tracker) startNewRunAt(current igt.Time, now time.Time) uuid.UUID {
	runID := uuid.New()
	t.activeRun = &ActiveRun{
		ID:          runID,
		StartTime:   now,
		LatestSplit: current,
	}
	return runID
}

func (t *Tracker) recordSplitTime(runID uuid.UUID, current igt.Time) {
	split := t.findByPercent(current.Percent)
	if split == nil {
		return
	}

	// History is appended in run order, so an entry for the current run can
	// only be the last one.
	if n := len(split.History); n > 0 && split.History[n-1].RunID == runID {
		split.History[n-1].Duration = current.Duration
		return
	}
	split.History = append(split.History, HistoricalSplit{RunID: runID, Duration: current.Duration})
}

func (t *Tracker) finalizeRunAt(runID uuid.UUID, current igt.Time, now time.Time) {
	if t.activeRun != nil {
		endedAt := now
		t.activeRun.EndTime = &endedAt
	}

	// No personal best always loses; ties never count as an improvement.
	isPB := t.personalBest == nil || t.personalBest.FinalTime == nil ||
		current.Duration < *t.personalBest.FinalTime

	for i := range t.runs {
		if t.runs[i].ID != runID {
			continue
		}
		endedAt := now
		finalTime := current.Duration
		t.runs[i].EndTime = &endedAt
		t.runs[i].FinalTime = &finalTime

		if isPB {
			pb := t.runs[i]
			t.personalBest = &pb
		}
	}

	if isPB {
		for i := range t.splits {
			split := &t.splits[i]
			if n := len(split.History); n > 0 && split.History[n-1].RunID == runID {
				d := split.History[n-1].Duration
				split.Time = &d
			} else {
				split.Time = nil
			}
		}
	}
}

// Update feeds one IGT reading into the run lifecycle. Readings whose percent
// matches no split are discarded, and readings delivered to an already
// finished run are ignored; neither touches the file. Every accepted reading
// mutates the tracker and then saves it; a save failure is returned but the
// in-memory state stands (the next successful save captures it).
func (t *Tracker) Update(current igt.Time) error {
	now := time.Now().UTC()

	if t.findByPercent(current.Percent) == nil {
		// Upstream OCR noise, not an error.
		return nil
	}

	var runID uuid.UUID
	haveRun := false
	if active := t.activeRun; active != nil {
		switch {
		case current.Percent < active.LatestSplit.Percent:
			// IGT regressed: the player reset. The abandoned run's summary is
			// left as it stood.
		case active.EndTime != nil:
			// Sealed run.
			return nil
		default:
			active.LatestSplit = current
			runID = active.ID
			haveRun = true
		}
	}

	if !haveRun {
		runID = t.startNewRunAt(current, now)
		t.runs = append(t.runs, RunSummary{ID: runID, StartTime: now})
	}

	t.recordSplitTime(runID, current)

	if t.isFinalSplit(current.Percent) {
		t.finalizeRunAt(runID, current, now)
	}

	return t.Save()
}

// BestSegments returns, per split, the fastest segment time over all runs
// that have history entries for both the split and its predecessor. Derived
// from history on every call; never persisted.
func (t *Tracker) BestSegments() []*time.Duration {
	best := make([]*time.Duration, len(t.splits))

	for i := range t.splits {
		var prev map[uuid.UUID]time.Duration
		if i > 0 {
			prev = make(map[uuid.UUID]time.Duration, len(t.splits[i-1].History))
			for _, hs := range t.splits[i-1].History {
				prev[hs.RunID] = hs.Duration
			}
		}

		for _, hs := range t.splits[i].History {
			seg := hs.Duration
			if i > 0 {
				prevDur, ok := prev[hs.RunID]
				if !ok || hs.Duration < prevDur {
					continue
				}
				seg = hs.Duration - prevDur
			}
			if best[i] == nil || seg < *best[i] {
				s := seg
				best[i] = &s
			}
		}
	}

	return best
}

// BestPossibleTime returns the best achievable final time: the active run's
// elapsed time plus the best segments of every remaining split, or the sum of
// all best segments when no run is active. Nil when any needed segment has no
// data yet.
func (t *Tracker) BestPossibleTime() *time.Duration {
	segments := t.BestSegments()

	start := 0
	var total time.Duration
	if active := t.activeRun; active != nil {
		found := false
		for i := range t.splits {
			if t.splits[i].Percent == active.LatestSplit.Percent {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		total = active.LatestSplit.Duration
	}

	for i := start; i < len(segments); i++ {
		if segments[i] == nil {
			return nil
		}
		total += *segments[i]
	}
	return &total
}
