package agg

import (
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// LocalClock returns t on the clock used for working hours. A nil loc keeps the
// offset recorded with the commit.
func LocalClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// MinuteOfDay returns the minutes elapsed since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// IsGitnapped reports whether a local minute of day falls outside working hours.
// The window is half-open: start is in hours, end is not. A window whose start
// equals its end covers the whole day.
func IsGitnapped(minute int, h schema.WorkingHours) bool {
	if h.Wraps() {
		return minute >= h.EndMinute && minute < h.StartMinute
	}
	return minute < h.StartMinute || minute >= h.EndMinute
}

// IsGitnappedAt classifies a commit timestamp.
func IsGitnappedAt(t time.Time, h schema.WorkingHours, loc *time.Location) bool {
	return IsGitnapped(MinuteOfDay(LocalClock(t, loc)), h)
}
