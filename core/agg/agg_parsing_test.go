package agg

import (
	"testing"
	"time"

	"github.com/huangsam/gitnapped/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityLog_Comprehensive(t *testing.T) {
	commits, skipped := ParseActivityLog(generateComprehensiveTestData())

	assert.Zero(t, skipped)
	require.Len(t, commits, 3)

	first := commits[0]
	assert.Equal(t, "abc123def456", first.Hash)
	assert.Equal(t, "Alice Developer", first.AuthorName)
	assert.Equal(t, 150, first.Insertions)
	assert.Equal(t, 15, first.Deletions)
	require.Len(t, first.Files, 2)
	assert.Equal(t, "go", first.Files[0].Extension)

	// Per-commit totals equal the sum of their file lines.
	for _, c := range commits {
		ins, del := 0, 0
		for _, f := range c.Files {
			ins += f.Insertions
			del += f.Deletions
		}
		assert.Equal(t, ins, c.Insertions, c.Hash)
		assert.Equal(t, del, c.Deletions, c.Hash)
	}

	// The recorded offset survives parsing.
	_, offset := commits[2].Timestamp.Zone()
	assert.Equal(t, -8*3600, offset)
	assert.Equal(t, 23, commits[2].Timestamp.Hour())
	assert.Equal(t, schema.NoExtension, commits[2].Files[0].Extension)
}

func TestParseActivityLog_WithRenames(t *testing.T) {
	commits, _ := ParseActivityLog(generateRenameTestData())
	require.Len(t, commits, 1)
	require.Len(t, commits[0].Files, 2)

	assert.Equal(t, "src/helpers/helper.go", commits[0].Files[0].Path)
	assert.Equal(t, "new.rb", commits[0].Files[1].Path)
	assert.Equal(t, "rb", commits[0].Files[1].Extension)
}

func TestParseActivityLog_EdgeCases(t *testing.T) {
	commits, skipped := ParseActivityLog(generateEdgeCaseTestData())

	assert.Equal(t, 2, skipped, "bad date and missing hash are skipped")
	require.Len(t, commits, 2)

	good1 := commits[0]
	assert.Equal(t, "good1", good1.Hash)
	require.Len(t, good1.Files, 3)
	assert.Equal(t, 0, good1.Files[0].Insertions, "binary file has no churn")
	assert.Equal(t, "png", good1.Files[0].Extension)
	assert.Equal(t, 10, good1.Insertions)
	assert.Equal(t, 2, good1.Deletions)

	good2 := commits[1]
	assert.Equal(t, "Bob Smith", good2.AuthorName)
	require.Len(t, good2.Files, 1, "lines of the skipped commits never leak")
	assert.Equal(t, "src/main.go", good2.Files[0].Path)
}

func TestParseActivityLog_Empty(t *testing.T) {
	commits, skipped := ParseActivityLog(nil)
	assert.Empty(t, commits)
	assert.Zero(t, skipped)

	commits, _ = ParseActivityLog([]byte("--abc|2024-01-01T00:00:00Z|Alice\n"))
	require.Len(t, commits, 1)
	assert.Empty(t, commits[0].Files, "a commit without file lines is still a commit")
}

func TestParseCommitHeader(t *testing.T) {
	testCases := []struct {
		name         string
		line         string
		expectedAuth string
		expectErr    bool
	}{
		{"valid header", "--abc123|2024-01-15T10:30:00Z|John Doe", "John Doe", false},
		{"timezone offset", "--abc123|2024-01-15T10:30:00-08:00|Jane Smith", "Jane Smith", false},
		{"pipe in author", "--abc123|2024-01-15T10:30:00Z|A | B", "A | B", false},
		{"invalid date", "--abc123|invalid-date|John Doe", "", true},
		{"malformed header", "--abc123|John Doe", "", true},
		{"missing author", "--abc123|2024-01-15T10:30:00Z|", "", true},
		{"bare prefix", "--", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := parseCommitHeader(tc.line)
			if tc.expectErr {
				assert.ErrorIs(t, err, schema.ErrCommitParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedAuth, c.AuthorName)
			assert.Equal(t, "abc123", c.Hash)
			assert.False(t, c.Timestamp.IsZero())
		})
	}
}

func TestParseFileStatsLine(t *testing.T) {
	testCases := []struct {
		name        string
		line        string
		expectOK    bool
		expectedRow schema.FileDelta
	}{
		{"normal file", "10\t5\tsrc/main.go", true, schema.FileDelta{Path: "src/main.go", Extension: "go", Insertions: 10, Deletions: 5}},
		{"binary file", "-\t-\tsrc/binary.dll", true, schema.FileDelta{Path: "src/binary.dll", Extension: "dll"}},
		{"malformed line - too few parts", "10\tsrc/main.go", false, schema.FileDelta{}},
		{"invalid numbers", "abc\tdef\tsrc/main.go", true, schema.FileDelta{Path: "src/main.go", Extension: "go"}},
		{"simple rename", "8\t1\told.go => new.go", true, schema.FileDelta{Path: "new.go", Extension: "go", Insertions: 8, Deletions: 1}},
		{"path with tab", "1\t0\tdir/a\tb.txt", true, schema.FileDelta{Path: "dir/a\tb.txt", Extension: "txt", Insertions: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row, ok := parseFileStatsLine(tc.line)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expectedRow, row)
		})
	}
}

func TestParseChurnValue(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected int
	}{
		{"normal number", "42", 42},
		{"zero", "0", 0},
		{"dash (binary)", "-", 0},
		{"empty string", "", 0},
		{"invalid number", "abc", 0},
		{"negative number", "-5", 0},
		{"large number", "999999", 999999},
		{"with whitespace", "  42  ", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseChurnValue(tc.input))
		})
	}
}

func TestParseRenamePath(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectedOld string
		expectedNew string
	}{
		{"simple", "old.go => new.go", "old.go", "new.go"},
		{"braced directory", "src/{utils => helpers}/helper.go", "src/utils/helper.go", "src/helpers/helper.go"},
		{"braced into new directory", "src/{ => sub}/a.go", "src/a.go", "src/sub/a.go"},
		{"braced file name", "docs/{a.md => b.md}", "docs/a.md", "docs/b.md"},
		{"unclosed brace", "src/{a => b/file.go", "", ""},
		{"brace without arrow", "src/{a}/file.go", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oldPath, newPath := parseRenamePath(tc.input)
			assert.Equal(t, tc.expectedOld, oldPath)
			assert.Equal(t, tc.expectedNew, newPath)
		})
	}
}

func TestFileExtension(t *testing.T) {
	testCases := map[string]string{
		"main.go":            "go",
		"web/App.TSX":        "tsx",
		"archive.tar.gz":     "gz",
		"Makefile":           schema.NoExtension,
		"dir.with.dots/file": schema.NoExtension,
		".gitignore":         "gitignore",
		"trailing.":          schema.NoExtension,
	}
	for input, expected := range testCases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, FileExtension(input))
		})
	}
}

func TestParseActivityLog_KeepsChronologyInput(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	log := generateTestGitLog([]gitLogScenario{
		{commitHash: "b", author: "A", date: base.Add(2 * time.Hour)},
		{commitHash: "a", author: "A", date: base.Add(time.Hour)},
	})
	commits, _ := ParseActivityLog(log)
	require.Len(t, commits, 2)
	assert.Equal(t, "b", commits[0].Hash, "the parser keeps log order; aggregation sorts")
}
