package splits

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSplitsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "splits.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_V1File(t *testing.T) {
	path := writeSplitsFile(t, `{
		"version": 1,
		"splits": {
			"splits": [
				{ "name": "Level 1", "percent": 10, "duration": "0:10:00" },
				{ "name": "Boss Fight", "percent": 50, "duration": "1:00:00" }
			]
		}
	}`)

	tr, err := Load(path)
	require.NoError(t, err)

	require.Len(t, tr.Splits(), 2)
	assert.Equal(t, "Level 1", tr.Splits()[0].Name)
	assert.Equal(t, uint32(10), tr.Splits()[0].Percent)
	require.NotNil(t, tr.Splits()[0].Time)
	assert.Equal(t, 10*time.Minute, *tr.Splits()[0].Time)
	assert.Empty(t, tr.Splits()[0].History)

	assert.Equal(t, "Boss Fight", tr.Splits()[1].Name)
	require.NotNil(t, tr.Splits()[1].Time)
	assert.Equal(t, time.Hour, *tr.Splits()[1].Time)

	assert.Nil(t, tr.PersonalBest())
	assert.Empty(t, tr.Runs())
	assert.Nil(t, tr.ActiveRun())
	assert.Equal(t, path, tr.Path())
}

func TestLoad_V1EmptySplitsList(t *testing.T) {
	path := writeSplitsFile(t, `{"version": 1, "splits": {"splits": []}}`)
	tr, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, tr.Splits())
}

func TestLoad_V1MissingDuration(t *testing.T) {
	path := writeSplitsFile(t, `{
		"version": 1,
		"splits": {"splits": [{ "name": "NoDuration", "percent": 10 }]}
	}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_V1NullDuration(t *testing.T) {
	path := writeSplitsFile(t, `{
		"version": 1,
		"splits": {"splits": [{ "name": "NullDuration", "percent": 20, "duration": null }]}
	}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_V1MalformedDurations(t *testing.T) {
	bad := []string{
		`{"version": 1, "splits": {"splits": [{ "name": "Invalid", "percent": 10, "duration": "1h5m" }]}}`,
		`{"version": 1, "splits": {"splits": [{ "name": "Invalid", "percent": 20, "duration": "1:65:90" }]}}`,
		`{"version": 1, "splits": {"splits": [{ "name": "Invalid", "percent": 30, "duration": "" }]}}`,
	}
	for i, contents := range bad {
		path := writeSplitsFile(t, contents)
		_, err := Load(path)
		assert.Error(t, err, "malformed input %d should fail", i)
	}
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	path := writeSplitsFile(t, `{"version": 99}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoad_MaximumVersion(t *testing.T) {
	path := writeSplitsFile(t, `{"version": 4294967295}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingVersion(t *testing.T) {
	path := writeSplitsFile(t, `{}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeSplitsFile(t, `{"version": 2,`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_V2DuplicatePercentIsFatal(t *testing.T) {
	path := writeSplitsFile(t, `{
		"version": 2,
		"splits": {
			"runs": [],
			"splits": [
				{ "name": "A", "percent": 50, "history": [] },
				{ "name": "B", "percent": 50, "history": [] }
			]
		}
	}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePercent)
}

func TestSave_WritesCurrentVersion(t *testing.T) {
	tr := newTestTracker(t,
		Split{Name: "Start", Percent: 25},
		Split{Name: "End", Percent: 100},
	)

	require.NoError(t, tr.Save())

	contents, err := os.ReadFile(tr.Path())
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"version": 2`)
	assert.Contains(t, string(contents), `"Start"`)
	assert.Contains(t, string(contents), `"End"`)
	assert.True(t, strings.HasSuffix(string(contents), "\n"))
}

func TestSave_NoPath(t *testing.T) {
	tr := New()
	assert.Error(t, tr.Save())
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	tr, err := Create(filepath.Join(dir, "splits.json"), []Split{{Name: "Only", Percent: 100}})
	require.NoError(t, err)
	require.NoError(t, tr.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "splits.json", entries[0].Name())
}

func TestRoundTrip_V2(t *testing.T) {
	tr := twoSplitTracker(t)

	// Two full runs, the second one faster.
	require.NoError(t, tr.Update(igtTime(10, 0, 0, 35)))
	require.NoError(t, tr.Update(igtTime(20, 0, 1, 10)))
	require.NoError(t, tr.Update(igtTime(10, 0, 0, 30)))
	require.NoError(t, tr.Update(igtTime(20, 0, 1, 5)))

	loaded, err := Load(tr.Path())
	require.NoError(t, err)

	assert.Equal(t, tr.Splits(), loaded.Splits())
	assert.Equal(t, tr.Runs(), loaded.Runs())
	assert.Equal(t, tr.PersonalBest(), loaded.PersonalBest())
	assert.Nil(t, loaded.ActiveRun(), "the active run is never persisted")
}

func TestRoundTrip_MigratedV1(t *testing.T) {
	path := writeSplitsFile(t, `{
		"version": 1,
		"splits": {
			"splits": [{ "name": "Level 1", "percent": 10, "duration": "0:10:00" }]
		}
	}`)

	tr, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, tr.Save())

	// The rewritten file is v2 now and still carries the baseline time.
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), `"version": 2`)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tr.Splits(), reloaded.Splits())
	require.NotNil(t, reloaded.Splits()[0].Time)
	assert.Equal(t, 10*time.Minute, *reloaded.Splits()[0].Time)
}

func TestRoundTrip_PreservesRunIdentity(t *testing.T) {
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	endedAt := now.Add(65 * time.Second)
	run := RunSummary{
		ID:        uuid.MustParse("6e7f24cb-9a77-4d15-a1de-1a9db3a7cf7e"),
		StartTime: now,
		EndTime:   &endedAt,
		FinalTime: durationPtr(65 * time.Second),
	}

	path := filepath.Join(t.TempDir(), "splits.json")
	tr, err := CreateWithHistory(path, &run, []RunSummary{run}, []Split{
		{Name: "Halfway", Percent: 10, History: []HistoricalSplit{{RunID: run.ID, Duration: 30 * time.Second}}},
		{Name: "Done", Percent: 20},
	})
	require.NoError(t, err)
	require.NoError(t, tr.Save())

	loaded, err := Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Runs(), 1)
	assert.Equal(t, run.ID, loaded.Runs()[0].ID)
	assert.Equal(t, run.StartTime, loaded.Runs()[0].StartTime)
	require.NotNil(t, loaded.Runs()[0].EndTime)
	assert.True(t, endedAt.Equal(*loaded.Runs()[0].EndTime))
	require.NotNil(t, loaded.PersonalBest())
	assert.Equal(t, run.ID, loaded.PersonalBest().ID)
}
