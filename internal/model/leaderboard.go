package model

// SortOrder is the direction of a leaderboard ordering
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// String returns the wire form ("ASC" or "DESC")
func (o SortOrder) String() string {
	if o == SortDescending {
		return "DESC"
	}
	return "ASC"
}

// SortColumn is a whitelisted leaderboard ordering column.
// Storage backends map each value to a fixed query fragment.
type SortColumn int

const (
	SortByID SortColumn = iota
	SortByColor
	SortByMap
	SortByTime
	SortByCreatedAt

	sortColumnCount
)

var sortColumnNames = [sortColumnCount]string{
	SortByID:        "id",
	SortByColor:     "color",
	SortByMap:       "map",
	SortByTime:      "time",
	SortByCreatedAt: "created_at",
}

// SortColumns lists every whitelisted column in declaration order
func SortColumns() []SortColumn {
	cols := make([]SortColumn, 0, sortColumnCount)
	for c := SortColumn(0); c < sortColumnCount; c++ {
		cols = append(cols, c)
	}
	return cols
}

// ParseSortColumn matches a wire column name exactly against the whitelist
func ParseSortColumn(name string) (SortColumn, bool) {
	for c, n := range sortColumnNames {
		if n == name {
			return SortColumn(c), true
		}
	}
	return SortByID, false
}

// Valid reports whether c is a declared column
func (c SortColumn) Valid() bool {
	return c >= 0 && c < sortColumnCount
}

// String returns the wire name of the column
func (c SortColumn) String() string {
	if !c.Valid() {
		return sortColumnNames[SortByID]
	}
	return sortColumnNames[c]
}

// Leaderboard query defaults
const (
	DefaultLeaderboardLimit  = 10
	DefaultLeaderboardOffset = 0
)

// LeaderboardQuery is a fully normalized ranking query.
// Map is always an exact-match filter; the empty string only matches records with an empty map.
type LeaderboardQuery struct {
	Map    string
	Order  SortOrder
	SortBy SortColumn
	Offset int
	Limit  int
}

// DefaultLeaderboardQuery returns the query used when no parameters are supplied
func DefaultLeaderboardQuery() LeaderboardQuery {
	return LeaderboardQuery{
		Map:    "",
		Order:  SortAscending,
		SortBy: SortByID,
		Offset: DefaultLeaderboardOffset,
		Limit:  DefaultLeaderboardLimit,
	}
}
