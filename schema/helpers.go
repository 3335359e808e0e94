package schema

import "fmt"

// MinutesPerDay is the number of minutes in a day.
const MinutesPerDay = 24 * 60

// Wraps reports whether the window crosses midnight.
func (h WorkingHours) Wraps() bool {
	return h.EndMinute <= h.StartMinute
}

// String renders the window in 24h notation, e.g. 09:00-17:00.
func (h WorkingHours) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		h.StartMinute/60, h.StartMinute%60,
		h.EndMinute/60, h.EndMinute%60)
}

// Lines returns insertions plus deletions.
func (s Stats) Lines() int {
	return s.Insertions + s.Deletions
}

// GitnappedPercent returns the share of commits made outside working hours.
func (s Stats) GitnappedPercent() float64 {
	if s.CommitCount == 0 {
		return 0
	}
	return float64(s.GitnappedCount) * 100 / float64(s.CommitCount)
}

// SortValue returns the metric selected by key. Unknown keys fall back to commits.
func (s Stats) SortValue(key SortKey) int {
	switch key {
	case SortByFiles:
		return s.FilesChanged
	case SortByLines:
		return s.Lines()
	default:
		return s.CommitCount
	}
}

// NewStats returns a zeroed Stats with initialized maps.
func NewStats() Stats {
	return Stats{
		FileTypes:     make(map[string]int),
		CommitsByDate: make(map[string]int),
	}
}
