package igt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidInput(t *testing.T) {
	got, err := Parse(": 117% 3:03:23")
	require.NoError(t, err)
	assert.Equal(t, Time{Percent: 117, Duration: 3*time.Hour + 3*time.Minute + 23*time.Second}, got)
}

func TestParse_WithoutColonPrefix(t *testing.T) {
	got, err := Parse("85% 0:59:01")
	require.NoError(t, err)
	assert.Equal(t, Time{Percent: 85, Duration: 59*time.Minute + time.Second}, got)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	got, err := Parse("   :   42%    1:02:03   ")
	require.NoError(t, err)
	assert.Equal(t, Time{Percent: 42, Duration: time.Hour + 2*time.Minute + 3*time.Second}, got)
}

func TestParse_LargeDurationAndPercent(t *testing.T) {
	got, err := Parse(": 999% 123:45:59")
	require.NoError(t, err)
	assert.Equal(t, Time{Percent: 999, Duration: 123*time.Hour + 45*time.Minute + 59*time.Second}, got)
	assert.Equal(t, "999% 123:45:59", got.String())
}

func TestParse_Rejections(t *testing.T) {
	inputs := []string{
		"85%",             // missing time
		"85% 59:01",       // too few time parts
		": 10% 1:02:03:04", // too many time parts
		": 10% 45",        // not a time
		"42% 1:03:2",      // single-digit seconds
		"42% 1:60:00",     // minutes == 60
		"42% 1:00:60",     // seconds == 60
		"42% 1:75:00",     // minutes > 60
		"42% 1:00:75",     // seconds > 60
		"abc% 1:00:00",    // non-numeric percent
		"",                // empty
	}
	for _, in := range inputs {
		_, err := Parse(in)
		assert.Error(t, err, "input %q should be rejected", in)
	}
}

func TestParse_UpperBound(t *testing.T) {
	_, err := Parse("42% 1:59:59")
	assert.NoError(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00:00", FormatDuration(0))
	assert.Equal(t, "0:10:00", FormatDuration(10*time.Minute))
	assert.Equal(t, "1:37:48", FormatDuration(time.Hour+37*time.Minute+48*time.Second))
	assert.Equal(t, "123:45:59", FormatDuration(123*time.Hour+45*time.Minute+59*time.Second))
}

func TestParseDuration_RoundTrip(t *testing.T) {
	cases := []struct{ h, m, s uint64 }{
		{0, 0, 0},
		{0, 0, 59},
		{0, 59, 0},
		{1, 0, 1},
		{25, 43, 12},
		{123, 45, 59},
	}
	for _, c := range cases {
		d := time.Duration(c.h*3600+c.m*60+c.s) * time.Second
		parsed, err := ParseDuration(FormatDuration(d))
		require.NoError(t, err, "h=%d m=%d s=%d", c.h, c.m, c.s)
		assert.Equal(t, d, parsed)
	}
}

func TestParseDuration_SingleDigitComponents(t *testing.T) {
	// The file codec is lenient about digit counts, strict about ranges.
	d, err := ParseDuration("1:5:9")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+5*time.Minute+9*time.Second, d)
}

func TestParseDuration_Rejections(t *testing.T) {
	inputs := []string{"", "1h5m", "1:65:90", "1:00", "1:00:00:00", "x:00:00", "1:xx:00", "1:00:xx", "1:60:00", "1:00:60"}
	for _, in := range inputs {
		_, err := ParseDuration(in)
		assert.Error(t, err, "input %q should be rejected", in)
	}
}
