package crud

import "fmt"

const (
	defaultPage  = 1
	defaultLimit = 10
)

// normalizePage clamps page and limit to usable values. Anything below 1
// falls back to the defaults, matching the feed contract.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// pageOffset converts a 1-based page into a row offset.
func pageOffset(page, limit int) int {
	return (page - 1) * limit
}

// videoSortColumns whitelists the columns a video feed may sort by. Keeping
// this closed stops arbitrary column names from reaching the ORDER BY clause.
var videoSortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"duration":   true,
	"views":      true,
}

// orderClause builds a deterministic ORDER BY expression from a whitelisted
// sort column and a direction. Unknown columns fall back to created_at.
// The id tiebreak keeps pagination stable when the sort key has duplicates.
func orderClause(sortBy string, desc bool, whitelist map[string]bool) string {
	if !whitelist[sortBy] {
		sortBy = "created_at"
		desc = true
	}
	dir := "asc"
	if desc {
		dir = "desc"
	}
	return fmt.Sprintf("%s %s, id %s", sortBy, dir, dir)
}
