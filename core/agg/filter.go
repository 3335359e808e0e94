package agg

import "github.com/huangsam/gitnapped/schema"

// AuthorFilter selects commits by author name. All matches everyone.
type AuthorFilter struct {
	Name string
	All  bool
}

// NewAuthorFilter builds the filter for a resolved author setting.
func NewAuthorFilter(name string, all bool) AuthorFilter {
	return AuthorFilter{Name: name, All: all || name == ""}
}

// InWindow reports whether the commit was authored inside the half-open window.
func InWindow(c schema.CommitRecord, w schema.AnalysisWindow) bool {
	return w.Contains(c.Timestamp)
}

// AuthorMatches reports whether the commit passes the author filter.
// Names are compared exactly, including case.
func AuthorMatches(c schema.CommitRecord, f AuthorFilter) bool {
	return f.All || c.AuthorName == f.Name
}

// Matches combines the window and author predicates.
func Matches(c schema.CommitRecord, w schema.AnalysisWindow, f AuthorFilter) bool {
	return InWindow(c, w) && AuthorMatches(c, f)
}
