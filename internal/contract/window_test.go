package contract

import (
	"testing"
	"time"

	"github.com/huangsam/gitnapped/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"6M", fixedNow.AddDate(0, -6, 0)},
		{"2Y", fixedNow.AddDate(-2, 0, 0)},
		{"3W", fixedNow.AddDate(0, 0, -21)},
		{"5D", fixedNow.AddDate(0, 0, -5)},
		{"12H", fixedNow.Add(-12 * time.Hour)},
		{"0D", fixedNow},
		{" 1D ", fixedNow.AddDate(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePeriod_CalendarMonths(t *testing.T) {
	// 6M before 31 March is not 180 days.
	now := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)
	got, err := ParsePeriod("1M", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, -1, 0), got)
	assert.NotEqual(t, now.Add(-30*24*time.Hour), got)
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, input := range []string{"", "M", "6", "6m", "6 M", "-6M", "6X", "M6", "999999999D"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParsePeriod(input, fixedNow)
			assert.ErrorIs(t, err, schema.ErrInvalidPeriodSyntax)
		})
	}
}

func TestResolveWindow(t *testing.T) {
	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	jan8 := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name                 string
		since, until, period string
		wantSince, wantUntil time.Time
	}{
		{
			name:      "default is since midnight yesterday",
			wantSince: time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC),
			wantUntil: fixedNow,
		},
		{
			name:      "relative period",
			period:    "6M",
			wantSince: fixedNow.AddDate(0, -6, 0),
			wantUntil: fixedNow,
		},
		{
			name:      "absolute dates",
			since:     "2024-01-01",
			until:     "2024-01-08",
			wantSince: jan1,
			wantUntil: jan8,
		},
		{
			name:      "absolute dates win over period",
			since:     "2024-01-01",
			until:     "2024-01-08",
			period:    "2D",
			wantSince: jan1,
			wantUntil: jan8,
		},
		{
			name:      "lone since runs until now",
			since:     "2024-01-01",
			wantSince: jan1,
			wantUntil: fixedNow,
		},
		{
			name:      "lone until starts at the epoch",
			until:     "2024-01-08",
			wantSince: time.Unix(0, 0).UTC(),
			wantUntil: jan8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ResolveWindow(fixedNow, tt.since, tt.until, tt.period)
			require.NoError(t, err)
			assert.True(t, tt.wantSince.Equal(w.Since), "since: want %v, got %v", tt.wantSince, w.Since)
			assert.True(t, tt.wantUntil.Equal(w.Until), "until: want %v, got %v", tt.wantUntil, w.Until)
			assert.True(t, w.Since.Before(w.Until))
		})
	}
}

func TestResolveWindow_Errors(t *testing.T) {
	tests := []struct {
		name                 string
		since, until, period string
		want                 error
	}{
		{name: "since equals until", since: "2024-01-01", until: "2024-01-01", want: schema.ErrInvalidWindow},
		{name: "since after until", since: "2024-02-01", until: "2024-01-01", want: schema.ErrInvalidWindow},
		{name: "since in the future", since: "2030-01-01", want: schema.ErrInvalidWindow},
		{name: "bad date", since: "01/02/2024", want: schema.ErrInvalidWindow},
		{name: "bad period", period: "six months", want: schema.ErrInvalidPeriodSyntax},
		{name: "bad period next to dates", since: "2024-01-01", period: "6X", want: schema.ErrInvalidPeriodSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWindow(fixedNow, tt.since, tt.until, tt.period)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
