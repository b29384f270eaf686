// Package orm holds reusable GORM scopes for list queries.
//
//	db.Scopes(orm.ContainsFold(term, "name", "description"), orm.Paginate(skip, limit)).Find(&rows)
package orm

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// likeEscape is the ESCAPE character used by ContainsFold. '!' behaves the
// same on sqlite, postgres, mysql and sqlserver.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
	"[", likeEscape+"[", // sqlserver character classes
)

// EscapeLike makes term match literally inside a LIKE pattern.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// ContainsFold matches rows where any of columns contains term, ignoring
// case. Wildcards in term match literally. NULL columns never match.
func ContainsFold(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"

		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%s'", col, likeEscape)
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// OrderBy sorts by column then by tiebreak in the same direction. Both
// columns must come from a whitelist; they are not quoted.
func OrderBy(column, tiebreak string, desc bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		db = db.Order(column + " " + dir)
		if tiebreak != "" && tiebreak != column {
			db = db.Order(tiebreak + " " + dir)
		}
		return db
	}
}

// Paginate applies OFFSET/LIMIT. A limit <= 0 leaves the query unbounded.
func Paginate(skip, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}
