// Package sqlquery builds the leaderboard SQL shared by the relational backends.
// Ordering comes from a fixed fragment per model.SortColumn; caller text never
// reaches the statement except as bound arguments.
package sqlquery

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hamsterrace/raceboard/internal/model"
)

// Placeholder renders the n-th (1-based) bind parameter for a dialect
type Placeholder func(n int) string

// Question renders SQLite-style positional parameters
func Question(int) string { return "?" }

// Dollar renders PostgreSQL-style numbered parameters
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// columnFragments is indexed by model.SortColumn
var columnFragments = [...]string{
	model.SortByID:        "id",
	model.SortByColor:     "color",
	model.SortByMap:       "map",
	model.SortByTime:      `"time"`,
	model.SortByCreatedAt: "created_at",
}

// Columns is the projection used by every race query, in scan order
const Columns = `id, color, name, map, "time", created_at`

// OrderBy returns the ORDER BY body for q, with id as a tiebreaker in the same
// direction so pagination is stable.
func OrderBy(q model.LeaderboardQuery) string {
	col := columnFragments[model.SortByID]
	if q.SortBy.Valid() {
		col = columnFragments[q.SortBy]
	}
	dir := q.Order.String()
	if q.SortBy == model.SortByID || !q.SortBy.Valid() {
		return col + " " + dir
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

// SelectRaces returns the leaderboard statement for q and its arguments
func SelectRaces(q model.LeaderboardQuery, ph Placeholder) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(Columns)
	b.WriteString(" FROM races WHERE map = ")
	b.WriteString(ph(1))
	b.WriteString(" ORDER BY ")
	b.WriteString(OrderBy(q))
	b.WriteString(" LIMIT ")
	b.WriteString(ph(2))
	b.WriteString(" OFFSET ")
	b.WriteString(ph(3))
	return b.String(), []any{q.Map, q.Limit, q.Offset}
}

// InsertRace returns the append statement. The fifth argument may be nil to
// fall back to the column default.
func InsertRace(ph Placeholder) string {
	return fmt.Sprintf(
		`INSERT INTO races (color, name, map, "time", created_at) VALUES (%s, %s, %s, %s, COALESCE(%s, CURRENT_TIMESTAMP)) RETURNING id, created_at`,
		ph(1), ph(2), ph(3), ph(4), ph(5),
	)
}
