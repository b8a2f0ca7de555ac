package repository

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// --- SQLite Implementation ---

type sqliteDialect struct{}

func (sqliteDialect) placeholder() sq.PlaceholderFormat {
	return sq.Question
}

func (sqliteDialect) containsFold(column, term string) sq.Sqlizer {
	// unicode_lower is registered by database.Connect and takes TEXT only
	return sq.Expr("unicode_lower(COALESCE("+column+", '')) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(term))+"%")
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
