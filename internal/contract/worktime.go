package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/gitnapped/schema"
)

// DefaultWorkingTime is the working-hours window used when none is configured.
const DefaultWorkingTime = "09:00-17:00"

var (
	clock24Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	clock12Pattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([AaPp][Mm])$`)
)

// ParseWorkingHours parses a daily window such as 09:00-17:00, 9AM-5PM or 22:00-6am.
func ParseWorkingHours(s string) (schema.WorkingHours, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultWorkingTime
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return schema.WorkingHours{}, fmt.Errorf("%w: %q (expected START-END, e.g. 09:00-17:00 or 9AM-5PM)", schema.ErrInvalidWorkingTime, s)
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return schema.WorkingHours{}, fmt.Errorf("%w: %q: %v", schema.ErrInvalidWorkingTime, s, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return schema.WorkingHours{}, fmt.Errorf("%w: %q: %v", schema.ErrInvalidWorkingTime, s, err)
	}
	return schema.WorkingHours{StartMinute: start, EndMinute: end}, nil
}

// parseClock returns the minute of day for a single 24h or 12h clock reading.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)

	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 {
			return 0, fmt.Errorf("hour %d out of range 0-23", hour)
		}
		if minute > 59 {
			return 0, fmt.Errorf("minute %d out of range 0-59", minute)
		}
		return hour*60 + minute, nil
	}

	if m := clock12Pattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour %d out of range 1-12", hour)
		}
		if minute > 59 {
			return 0, fmt.Errorf("minute %d out of range 0-59", minute)
		}
		hour %= 12
		if strings.EqualFold(m[3], "pm") {
			hour += 12
		}
		return hour*60 + minute, nil
	}

	return 0, fmt.Errorf("unrecognized time %q", s)
}
