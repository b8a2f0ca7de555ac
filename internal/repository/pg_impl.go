package repository

import (
	sq "github.com/Masterminds/squirrel"
)

// --- PostgreSQL Implementation ---

type postgresDialect struct{}

func (postgresDialect) placeholder() sq.PlaceholderFormat {
	return sq.Dollar
}

func (postgresDialect) containsFold(column, term string) sq.Sqlizer {
	return sq.Expr(column+" ILIKE ? ESCAPE '\\'", "%"+escapeLike(term)+"%")
}
