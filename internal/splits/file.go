package splits

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/df5602/srt-igt-splits/internal/igt"
)

// Current version of the splits file. Increment on breaking change and add a
// migration; old schema structs stay around for read compatibility.
const splitsFileVersion = 2

// ErrUnsupportedVersion marks a splits file written by a newer (or unknown)
// schema version. Such files are never guessed at or truncated.
var ErrUnsupportedVersion = errors.New("unsupported splits file version")

// detectVersion reads just the version tag; any JSON document with a
// top-level "version" field decodes into it.
type detectVersion struct {
	Version int `json:"version"`
}

// hms wraps time.Duration with the human-readable "H:MM:SS" encoding used
// throughout the splits file.
type hms time.Duration

func (d hms) MarshalJSON() ([]byte, error) {
	return json.Marshal(igt.FormatDuration(time.Duration(d)))
}

func (d *hms) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be an \"H:MM:SS\" string: %w", err)
	}
	parsed, err := igt.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = hms(parsed)
	return nil
}

// --- Version 1 (read-only since version 2) ---

type fileV1 struct {
	Version int      `json:"version"`
	Splits  splitsV1 `json:"splits"`
}

type splitsV1 struct {
	Splits []splitV1 `json:"splits"`
}

type splitV1 struct {
	Name     string `json:"name"`
	Percent  uint32 `json:"percent"`
	Duration *hms   `json:"duration"`
}

// fromV1 migrates a v1 document onto the current model: the flat duration
// becomes the PB split time, with no run history to attach it to.
func fromV1(file fileV1, path string) (*Tracker, error) {
	list := make([]Split, 0, len(file.Splits.Splits))
	for _, s := range file.Splits.Splits {
		if s.Duration == nil {
			return nil, fmt.Errorf("split %q: missing duration", s.Name)
		}
		d := time.Duration(*s.Duration)
		list = append(list, Split{
			Name:    s.Name,
			Percent: s.Percent,
			Time:    &d,
		})
	}
	return &Tracker{path: path, splits: list}, nil
}

// --- Version 2 (current) ---

type fileV2 struct {
	Version int      `json:"version"`
	Splits  splitsV2 `json:"splits"`
}

type splitsV2 struct {
	PersonalBest *runSummaryV2  `json:"personal_best,omitempty"`
	Runs         []runSummaryV2 `json:"runs"`
	Splits       []splitV2      `json:"splits"`
}

type runSummaryV2 struct {
	ID        uuid.UUID  `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	FinalTime *hms       `json:"final_time,omitempty"`
}

type splitV2 struct {
	Name    string      `json:"name"`
	Percent uint32      `json:"percent"`
	Time    *hms        `json:"time,omitempty"`
	History []historyV2 `json:"history"`
}

type historyV2 struct {
	RunID    uuid.UUID `json:"run_id"`
	Duration hms       `json:"duration"`
}

func runSummaryToV2(run RunSummary) runSummaryV2 {
	out := runSummaryV2{
		ID:        run.ID,
		StartTime: run.StartTime,
		EndTime:   run.EndTime,
	}
	if run.FinalTime != nil {
		ft := hms(*run.FinalTime)
		out.FinalTime = &ft
	}
	return out
}

func runSummaryFromV2(run runSummaryV2) RunSummary {
	out := RunSummary{
		ID:        run.ID,
		StartTime: run.StartTime,
		EndTime:   run.EndTime,
	}
	if run.FinalTime != nil {
		ft := time.Duration(*run.FinalTime)
		out.FinalTime = &ft
	}
	return out
}

func toV2(t *Tracker) fileV2 {
	doc := fileV2{
		Version: splitsFileVersion,
		Splits: splitsV2{
			Runs:   make([]runSummaryV2, 0, len(t.runs)),
			Splits: make([]splitV2, 0, len(t.splits)),
		},
	}

	if t.personalBest != nil {
		pb := runSummaryToV2(*t.personalBest)
		doc.Splits.PersonalBest = &pb
	}
	for _, run := range t.runs {
		doc.Splits.Runs = append(doc.Splits.Runs, runSummaryToV2(run))
	}
	for _, split := range t.splits {
		out := splitV2{
			Name:    split.Name,
			Percent: split.Percent,
			History: make([]historyV2, 0, len(split.History)),
		}
		if split.Time != nil {
			d := hms(*split.Time)
			out.Time = &d
		}
		for _, hs := range split.History {
			out.History = append(out.History, historyV2{RunID: hs.RunID, Duration: hms(hs.Duration)})
		}
		doc.Splits.Splits = append(doc.Splits.Splits, out)
	}

	return doc
}

func fromV2(file fileV2, path string) *Tracker {
	t := &Tracker{path: path}

	if file.Splits.PersonalBest != nil {
		pb := runSummaryFromV2(*file.Splits.PersonalBest)
		t.personalBest = &pb
	}
	for _, run := range file.Splits.Runs {
		t.runs = append(t.runs, runSummaryFromV2(run))
	}
	for _, s := range file.Splits.Splits {
		split := Split{
			Name:    s.Name,
			Percent: s.Percent,
		}
		if s.Time != nil {
			d := time.Duration(*s.Time)
			split.Time = &d
		}
		for _, hs := range s.History {
			split.History = append(split.History, HistoricalSplit{
				RunID:    hs.RunID,
				Duration: time.Duration(hs.Duration),
			})
		}
		t.splits = append(t.splits, split)
	}

	return t
}

// Load reads a splits file, migrating older schema versions forward, and
// validates the result. The active run is never loaded; it is derived purely
// from subsequent updates.
func Load(path string) (*Tracker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read splits file %s: %w", path, err)
	}

	var version detectVersion
	if err := json.Unmarshal(data, &version); err != nil {
		return nil, fmt.Errorf("parse splits file version: %w", err)
	}

	var t *Tracker
	switch version.Version {
	case 1:
		var file fileV1
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse v1 splits file: %w", err)
		}
		t, err = fromV1(file, path)
		if err != nil {
			return nil, fmt.Errorf("migrate v1 splits file: %w", err)
		}
	case 2:
		var file fileV2
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse v2 splits file: %w", err)
		}
		t = fromV2(file, path)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version.Version)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes the tracker to its backing file in the current schema version.
// The document goes to a temporary file in the destination directory first
// and is renamed into place, so the destination is never observed
// half-written.
func (t *Tracker) Save() error {
	if t.path == "" {
		return errors.New("no file path to save to")
	}

	doc := toV2(t)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode splits file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, ".splits-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, t.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace splits file: %w", err)
	}
	return nil
}
