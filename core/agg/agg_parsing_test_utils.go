package agg

import (
	"fmt"
	"strings"
	"time"
)

// gitLogScenario represents a single commit scenario for test data generation.
type gitLogScenario struct {
	commitHash string
	author     string
	date       time.Time
	files      []fileChange
}

// fileChange represents a single file change in a commit.
type fileChange struct {
	path      string
	additions int
	deletions int
}

// generateTestGitLog creates a programmatic git log fixture in the activity log format.
func generateTestGitLog(scenarios []gitLogScenario) []byte {
	var lines []string
	for _, scenario := range scenarios {
		lines = append(lines, fmt.Sprintf("--%s|%s|%s", scenario.commitHash, scenario.date.Format(time.RFC3339), scenario.author))
		for _, file := range scenario.files {
			lines = append(lines, fmt.Sprintf("%d\t%d\t%s", file.additions, file.deletions, file.path))
		}
		lines = append(lines, "") // Empty line between commits
	}
	return []byte(strings.Join(lines, "\n"))
}

// generateComprehensiveTestData creates a log with several authors, days and offsets.
func generateComprehensiveTestData() []byte {
	baseTime := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	pst := time.FixedZone("PST", -8*3600)

	return generateTestGitLog([]gitLogScenario{
		{
			commitHash: "abc123def456",
			author:     "Alice Developer",
			date:       baseTime,
			files: []fileChange{
				{"core/analysis.go", 50, 10},
				{"core/core.go", 100, 5},
			},
		},
		{
			commitHash: "def456ghi789",
			author:     "Bob Tester",
			date:       baseTime.Add(time.Hour),
			files: []fileChange{
				{"core/analysis.go", 25, 5},
				{"README.md", 75, 0},
			},
		},
		{
			commitHash: "ghi789jkl012",
			author:     "Alice Developer",
			date:       time.Date(2024, 1, 2, 23, 30, 0, 0, pst),
			files: []fileChange{
				{"Makefile", 3, 1},
			},
		},
	})
}

// generateRenameTestData creates a log whose file lines use both rename notations.
func generateRenameTestData() []byte {
	return generateTestGitLog([]gitLogScenario{
		{
			commitHash: "rename1",
			author:     "Alice Developer",
			date:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			files: []fileChange{
				{"src/{utils => helpers}/helper.go", 2, 1},
				{"old.py => new.rb", 0, 0},
			},
		},
	})
}

// generateEdgeCaseTestData creates a log with binary files, malformed headers and stray lines.
func generateEdgeCaseTestData() []byte {
	return []byte(strings.Join([]string{
		"3\t3\torphan.go", // before any header
		"--good1|2024-01-01T10:00:00Z|Alice",
		"-\t-\tsrc/logo.png",
		"0\t0\tsrc/empty.txt",
		"10\t2\tsrc/main.go",
		"",
		"--bad1|not-a-date|Alice",
		"99\t99\tsrc/ignored.go",
		"--|2024-01-01T11:00:00Z|Alice",
		"--good2|2024-01-01T12:00:00+02:00|Bob Smith",
		"1\t1\tsrc/main.go",
		"malformed line",
		"",
	}, "\n"))
}
