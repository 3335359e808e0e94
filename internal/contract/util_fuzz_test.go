package contract

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// FuzzParseRepoString fuzzes the annotation parser; the path never keeps a bracket.
func FuzzParseRepoString(f *testing.F) {
	seeds := []string{
		"~/src/api [Backend][Payments]",
		"/tmp/repo [Solo]",
		"/tmp/repo",
		"[][]",
		"a [b]c [d",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		e := ParseRepoString(s)
		if strings.Contains(e.Path, "[") {
			t.Fatalf("path %q still contains an annotation", e.Path)
		}
	})
}

// FuzzParseWorkingHours checks that accepted windows stay inside one day.
func FuzzParseWorkingHours(f *testing.F) {
	for _, seed := range []string{"09:00-17:00", "9AM-5PM", "22:00-6am", "12am-12pm", "25:00-01:00", "-", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		h, err := ParseWorkingHours(s)
		if err != nil {
			return
		}
		for _, m := range []int{h.StartMinute, h.EndMinute} {
			if m < 0 || m >= schema.MinutesPerDay {
				t.Fatalf("%q produced out-of-range minute %d", s, m)
			}
		}
	})
}

// FuzzParsePeriod checks that accepted periods never move forward in time.
func FuzzParsePeriod(f *testing.F) {
	now := time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)
	for _, seed := range []string{"6M", "2Y", "3W", "5D", "12H", "0D", "M6", "6m"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		since, err := ParsePeriod(s, now)
		if err != nil {
			return
		}
		if since.After(now) {
			t.Fatalf("%q resolved to %v after now", s, since)
		}
	})
}
