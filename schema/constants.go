package schema

import "time"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Period represents a named analysis window such as "7d".
	Period string

	// RankBy represents the leaderboard ranking metric.
	RankBy string

	// ContributorSort represents the ordering of contributor details.
	ContributorSort string

	// Cadence represents how regularly a repository receives commits.
	Cadence string

	// InsightKind represents the category of a velocity insight.
	InsightKind string

	// ShippedCategory represents the category of a shipped narrative item.
	ShippedCategory string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All periods supported.
const (
	Period24h  Period = "24h"
	Period48h  Period = "48h"
	Period7d   Period = "7d" // default
	Period14d  Period = "14d"
	Period30d  Period = "30d"
	Period90d  Period = "90d"
	Period365d Period = "365d"
)

// DefaultPeriod is used whenever a period is missing or unknown.
const DefaultPeriod = Period7d

// Leaderboard ranking metrics.
const (
	RankByCommits      RankBy = "commits" // default
	RankByAdditions    RankBy = "additions"
	RankByActiveDays   RankBy = "active_days"
	RankByFilesChanged RankBy = "files_changed"
)

// Contributor orderings.
const (
	SortByCommits    ContributorSort = "commits" // default
	SortByAdditions  ContributorSort = "additions"
	SortByLastActive ContributorSort = "last_active"
)

// Repository cadences.
const (
	CadenceDaily    Cadence = "daily"
	CadenceSporadic Cadence = "sporadic"
	CadenceInactive Cadence = "inactive"
)

// Velocity insight kinds.
const (
	InsightTrend   InsightKind = "trend"
	InsightPeak    InsightKind = "peak"
	InsightPattern InsightKind = "pattern"
	InsightFocus   InsightKind = "focus"
)

// Shipped narrative categories.
const (
	CategoryFeature     ShippedCategory = "feature"
	CategoryFix         ShippedCategory = "fix"
	CategoryImprovement ShippedCategory = "improvement" // fallback
	CategoryRefactor    ShippedCategory = "refactor"
)

// TimestampFormat is the canonical UTC representation used for event ordering.
// Lexicographic order of values in this format matches chronological order.
const TimestampFormat = "2006-01-02T15:04:05Z"

// DateFormat is the calendar day representation used by daily series.
const DateFormat = "2006-01-02"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidRankBy lists all valid leaderboard metrics.
var ValidRankBy = map[RankBy]struct{}{
	RankByCommits:      {},
	RankByAdditions:    {},
	RankByActiveDays:   {},
	RankByFilesChanged: {},
}

// ValidContributorSorts lists all valid contributor orderings.
var ValidContributorSorts = map[ContributorSort]struct{}{
	SortByCommits:    {},
	SortByAdditions:  {},
	SortByLastActive: {},
}

// ValidShippedCategories lists all valid narrative categories.
var ValidShippedCategories = map[ShippedCategory]struct{}{
	CategoryFeature:     {},
	CategoryFix:         {},
	CategoryImprovement: {},
	CategoryRefactor:    {},
}

// AllPeriods lists every period in ascending length.
var AllPeriods = []Period{Period24h, Period48h, Period7d, Period14d, Period30d, Period90d, Period365d}

var periodDays = map[Period]int{
	Period24h:  1,
	Period48h:  2,
	Period7d:   7,
	Period14d:  14,
	Period30d:  30,
	Period90d:  90,
	Period365d: 365,
}

// extendedPeriods maps each period to the next larger window, used to look
// at the period immediately preceding the current one.
var extendedPeriods = map[Period]Period{
	Period24h:  Period48h,
	Period48h:  Period7d,
	Period7d:   Period14d,
	Period14d:  Period30d,
	Period30d:  Period90d,
	Period90d:  Period365d,
	Period365d: Period365d,
}

var periodText = map[Period]string{
	Period24h:  "24 hours",
	Period48h:  "48 hours",
	Period7d:   "7 days",
	Period14d:  "14 days",
	Period30d:  "30 days",
	Period90d:  "90 days",
	Period365d: "year",
}

// ParsePeriod returns the matching Period, or DefaultPeriod when s is unknown.
func ParsePeriod(s string) Period {
	p := Period(s)
	if _, ok := periodDays[p]; ok {
		return p
	}
	return DefaultPeriod
}

// PeriodFromDays maps a dashboard day count to a period. Only 7, 14 and 30
// are accepted; anything else falls back to DefaultPeriod.
func PeriodFromDays(days int) Period {
	switch days {
	case 14:
		return Period14d
	case 30:
		return Period30d
	default:
		return Period7d
	}
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	_, ok := periodDays[p]
	return ok
}

// Days returns the number of calendar days covered by the period.
func (p Period) Days() int {
	if d, ok := periodDays[p]; ok {
		return d
	}
	return periodDays[DefaultPeriod]
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration {
	if p == Period24h {
		return 24 * time.Hour
	}
	if p == Period48h {
		return 48 * time.Hour
	}
	return time.Duration(p.Days()) * 24 * time.Hour
}

// Extended returns the next larger window. Unknown periods extend to 90d.
func (p Period) Extended() Period {
	if e, ok := extendedPeriods[p]; ok {
		return e
	}
	return Period90d
}

// Start returns the beginning of the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	return now.Add(-p.Duration())
}

// Text returns a human-readable description of the period.
func (p Period) Text() string {
	if t, ok := periodText[p]; ok {
		return t
	}
	return periodText[DefaultPeriod]
}
