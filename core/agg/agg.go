// Package agg turns raw commit logs into per-repository and cross-repository statistics.
package agg

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/gitnapped/internal/contract"
	"github.com/huangsam/gitnapped/schema"
)

// ParseActivityLog parses the output of GitClient.GetActivityLog into commit records.
// Commits with a malformed header are skipped along with their file lines, and
// the number skipped is returned.
func ParseActivityLog(out []byte) ([]schema.CommitRecord, int) {
	var (
		commits []schema.CommitRecord
		current *schema.CommitRecord
		skipped int
	)

	flush := func() {
		if current != nil {
			commits = append(commits, *current)
			current = nil
		}
	}

	for l := range strings.SplitSeq(string(out), "\n") {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			continue // Skip blank lines
		}

		if strings.HasPrefix(l, contract.LogHeaderPrefix) {
			flush()
			commit, err := parseCommitHeader(l)
			if err != nil {
				skipped++
				contract.Logger().WithError(err).Debug("Skipping commit")
				continue
			}
			current = &commit
			continue
		}

		if current == nil {
			continue // file lines of a skipped commit
		}
		delta, ok := parseFileStatsLine(l)
		if !ok {
			continue
		}
		current.Files = append(current.Files, delta)
		current.Insertions += delta.Insertions
		current.Deletions += delta.Deletions
	}
	flush()

	return commits, skipped
}

// parseCommitHeader parses a "--hash|date|author" line.
func parseCommitHeader(line string) (schema.CommitRecord, error) {
	parts := strings.SplitN(strings.TrimPrefix(line, contract.LogHeaderPrefix), "|", 3) // hash|date|author
	if len(parts) != 3 {
		return schema.CommitRecord{}, fmt.Errorf("%w: header %q has %d fields", schema.ErrCommitParse, line, len(parts))
	}
	hash, dateStr, author := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if hash == "" || author == "" {
		return schema.CommitRecord{}, fmt.Errorf("%w: header %q is missing hash or author", schema.ErrCommitParse, line)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return schema.CommitRecord{}, fmt.Errorf("%w: commit %s has bad date %q", schema.ErrCommitParse, hash, dateStr)
	}
	return schema.CommitRecord{Hash: hash, AuthorName: author, Timestamp: date}, nil
}

// parseFileStatsLine parses a numstat line. Renamed files are attributed to their new path.
func parseFileStatsLine(line string) (schema.FileDelta, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return schema.FileDelta{}, false
	}

	addStr, delStr, filePath := parts[0], parts[1], parts[2]
	if strings.Contains(filePath, " => ") {
		if _, newPath := parseRenamePath(filePath); newPath != "" {
			filePath = newPath
		}
	}

	return schema.FileDelta{
		Path:       filePath,
		Extension:  FileExtension(filePath),
		Insertions: parseChurnValue(addStr),
		Deletions:  parseChurnValue(delStr),
	}, true
}

// parseChurnValue converts a churn string to int, handling "-" as 0.
func parseChurnValue(s string) int {
	if s == "-" {
		return 0 // binary file
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(p string) (string, string) {
	if !strings.Contains(p, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(p, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(p, "{")
	braceEnd := strings.Index(p, "}")
	if braceStart == -1 || braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := p[:braceStart]
	renamePart := p[braceStart+1 : braceEnd]
	suffix := p[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	oldPath := path.Clean(prefix + renameParts[0] + suffix)
	newPath := path.Clean(prefix + renameParts[1] + suffix)
	return oldPath, newPath
}

// FileExtension returns the lowercased extension of a path without the dot,
// or schema.NoExtension when there is none.
func FileExtension(p string) string {
	ext := strings.TrimPrefix(path.Ext(path.Base(p)), ".")
	if ext == "" {
		return schema.NoExtension
	}
	return strings.ToLower(ext)
}
