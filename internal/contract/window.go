package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitnapped/schema"
)

// DateLayout is the accepted layout for absolute --since/--until dates.
const DateLayout = "2006-01-02"

// maxPeriodValue bounds the period count so the arithmetic cannot overflow.
const maxPeriodValue = 100000

var periodPattern = regexp.MustCompile(`^(\d+)([YMWDH])$`)

// ParsePeriod subtracts a relative period such as 6M, 2Y, 3W, 5D or 12H from now.
// Y, M, W and D use calendar arithmetic; H is a fixed duration.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	m := periodPattern.FindStringSubmatch(strings.TrimSpace(period))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected <number><Y|M|W|D|H>, e.g. 6M)", schema.ErrInvalidPeriodSyntax, period)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxPeriodValue {
		return time.Time{}, fmt.Errorf("%w: %q: value out of range", schema.ErrInvalidPeriodSyntax, period)
	}

	switch m[2] {
	case "Y":
		return now.AddDate(-n, 0, 0), nil
	case "M":
		return now.AddDate(0, -n, 0), nil
	case "W":
		return now.AddDate(0, 0, -7*n), nil
	case "D":
		return now.AddDate(0, 0, -n), nil
	default: // H
		return now.Add(-time.Duration(n) * time.Hour), nil
	}
}

// ResolveWindow turns the optional absolute dates and relative period into a concrete window.
//
// Absolute dates win over the period. A lone --since runs until now, a lone --until
// starts at the Unix epoch, and no input at all means since midnight yesterday.
func ResolveWindow(now time.Time, since, until, period string) (schema.AnalysisWindow, error) {
	since = strings.TrimSpace(since)
	until = strings.TrimSpace(until)
	period = strings.TrimSpace(period)

	var periodStart time.Time
	if period != "" {
		t, err := ParsePeriod(period, now)
		if err != nil {
			return schema.AnalysisWindow{}, err
		}
		periodStart = t
	}

	w := schema.AnalysisWindow{Until: now}
	switch {
	case since != "" || until != "":
		if since != "" {
			t, err := parseDate(since, now.Location())
			if err != nil {
				return schema.AnalysisWindow{}, err
			}
			w.Since = t
		} else {
			w.Since = time.Unix(0, 0).In(now.Location())
		}
		if until != "" {
			t, err := parseDate(until, now.Location())
			if err != nil {
				return schema.AnalysisWindow{}, err
			}
			w.Until = t
		}
		if period != "" {
			Logger().Debugf("Ignoring period %s because absolute dates were given", period)
		}
	case period != "":
		w.Since = periodStart
	default:
		y, mo, d := now.AddDate(0, 0, -1).Date()
		w.Since = time.Date(y, mo, d, 0, 0, 0, 0, now.Location())
	}

	if !w.Since.Before(w.Until) {
		return schema.AnalysisWindow{}, fmt.Errorf("%w: since (%s) must be before until (%s)",
			schema.ErrInvalidWindow, w.Since.Format(time.RFC3339), w.Until.Format(time.RFC3339))
	}
	return w, nil
}

// parseDate parses a YYYY-MM-DD date as midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must use YYYY-MM-DD", schema.ErrInvalidWindow, s)
	}
	return t, nil
}
