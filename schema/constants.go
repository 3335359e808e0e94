package schema

// Custom string types for type safety.
type (
	// SortKey represents the metric used to order repositories and groups.
	SortKey string

	// GroupingMode represents which group rollups are emitted.
	GroupingMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string

	// GitBackend represents the VCS adapter implementation.
	GitBackend string
)

// All sort keys supported.
const (
	SortByCommits SortKey = "commits" // default
	SortByFiles   SortKey = "files"
	SortByLines   SortKey = "lines"
)

// All grouping modes supported.
const (
	GroupNone       GroupingMode = "none" // default
	GroupCategories GroupingMode = "categories"
	GroupProjects   GroupingMode = "projects"
	GroupBoth       GroupingMode = "both"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All git backends supported.
const (
	ExecGitBackend  GitBackend = "exec" // default
	GoGitGitBackend GitBackend = "gogit"
)

// Defaults for repositories without annotations.
const (
	UncategorizedCategory = "Uncategorized"
	UnnamedProject        = "Unnamed"
	NoExtension           = "none"
)

// DayLayout is the key format of the per-day commit histogram.
const DayLayout = "2006-01-02"

// ValidSortKeys lists all valid sort keys.
var ValidSortKeys = map[SortKey]struct{}{
	SortByCommits: {},
	SortByFiles:   {},
	SortByLines:   {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidGitBackends lists all valid git backends.
var ValidGitBackends = map[GitBackend]struct{}{
	ExecGitBackend:  {},
	GoGitGitBackend: {},
}

// NewGroupingMode derives the grouping mode from the two grouping toggles.
func NewGroupingMode(categories, projects bool) GroupingMode {
	switch {
	case categories && projects:
		return GroupBoth
	case categories:
		return GroupCategories
	case projects:
		return GroupProjects
	default:
		return GroupNone
	}
}

// ByCategory reports whether category rollups are requested.
func (g GroupingMode) ByCategory() bool {
	return g == GroupCategories || g == GroupBoth
}

// ByProject reports whether project rollups are requested.
func (g GroupingMode) ByProject() bool {
	return g == GroupProjects || g == GroupBoth
}
