package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Severity labels for the gitnapped share of commits.
const (
	NappedHeavy    = "Heavy"    // half or more of the commits
	NappedFrequent = "Frequent" // a quarter or more
	NappedSome     = "Some"     // any at all
	NappedNone     = "None"     // no commits outside working hours
)

// Color variables for console output.
var (
	HeavyColor    = color.New(color.FgRed, color.Bold)
	FrequentColor = color.New(color.FgMagenta, color.Bold)
	SomeColor     = color.New(color.FgYellow)
	NoneColor     = color.New(color.FgCyan)
	HeaderColor   = color.New(color.FgHiWhite, color.Bold)
)

// GetPlainLabel returns the severity label for a gitnapped percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(percent float64) string {
	switch {
	case percent >= 50:
		return NappedHeavy
	case percent >= 25:
		return NappedFrequent
	case percent > 0:
		return NappedSome
	default:
		return NappedNone
	}
}

// GetColorLabel returns text colored by the severity of the gitnapped percentage.
func GetColorLabel(percent float64, text string) string {
	switch GetPlainLabel(percent) {
	case NappedHeavy:
		return HeavyColor.Sprint(text)
	case NappedFrequent:
		return FrequentColor.Sprint(text)
	case NappedSome:
		return SomeColor.Sprint(text)
	default:
		return NoneColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the commit cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitnapped_cache.db"
	}
	return filepath.Join(homeDir, ".gitnapped_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gitnapped_history.db"
	}
	return filepath.Join(homeDir, ".gitnapped_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
