// Package igt handles in-game-time readings: the "percent complete plus
// elapsed time" values the capture pipeline extracts from the game's HUD.
package igt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Time is a single IGT reading.
type Time struct {
	Percent  uint32
	Duration time.Duration
}

// Parse parses a reading like ": 117% 3:03:23" into a Time. The leading
// colon is optional. Minutes and seconds must be exactly two digits and < 60.
func Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, ":"))

	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Time{}, fmt.Errorf("expected two parts: percentage and time, got %q", s)
	}

	percentStr := strings.TrimSuffix(parts[0], "%")
	percent, err := strconv.ParseUint(percentStr, 10, 32)
	if err != nil {
		return Time{}, fmt.Errorf("invalid percentage %q: %w", parts[0], err)
	}

	timeParts := strings.Split(parts[1], ":")
	if len(timeParts) != 3 {
		return Time{}, fmt.Errorf("invalid time %q: must be H:MM:SS", parts[1])
	}
	if len(timeParts[1]) != 2 || len(timeParts[2]) != 2 {
		return Time{}, fmt.Errorf("invalid time %q: minutes and seconds must be exactly two digits", parts[1])
	}

	hours, err := strconv.ParseUint(timeParts[0], 10, 64)
	if err != nil {
		return Time{}, fmt.Errorf("invalid hours %q: %w", timeParts[0], err)
	}
	minutes, err := strconv.ParseUint(timeParts[1], 10, 64)
	if err != nil {
		return Time{}, fmt.Errorf("invalid minutes %q: %w", timeParts[1], err)
	}
	seconds, err := strconv.ParseUint(timeParts[2], 10, 64)
	if err != nil {
		return Time{}, fmt.Errorf("invalid seconds %q: %w", timeParts[2], err)
	}
	if minutes >= 60 || seconds >= 60 {
		return Time{}, fmt.Errorf("invalid time %q: minutes and seconds must be < 60", parts[1])
	}

	return Time{
		Percent:  uint32(percent),
		Duration: time.Duration(hours*3600+minutes*60+seconds) * time.Second,
	}, nil
}

func (t Time) String() string {
	return fmt.Sprintf("%d%% %s", t.Percent, FormatDuration(t.Duration))
}

// FormatDuration renders a duration as "H:MM:SS". Hours are unbounded.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// ParseDuration parses an "H:MM:SS" string as written to the splits file.
// Unlike Parse it does not require two-digit minutes and seconds, but both
// must still be < 60.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid format (expected H:MM:SS): %q", s)
	}

	h, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours %q: %w", parts[0], err)
	}
	m, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q: %w", parts[1], err)
	}
	sec, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds %q: %w", parts[2], err)
	}
	if m >= 60 || sec >= 60 {
		return 0, fmt.Errorf("minutes or seconds out of range in %q", s)
	}

	return time.Duration(h*3600+m*60+sec) * time.Second, nil
}
