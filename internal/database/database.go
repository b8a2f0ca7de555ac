package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/cityinfo-api/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// SQLiteDriverName is go-sqlite3 with the unicode_lower(text) function
// registered on every connection. SQLite's built-in LOWER only folds ASCII.
const SQLiteDriverName = "sqlite3_cityinfo"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// ErrNoDatabase is returned when the configured store does not use SQL.
var ErrNoDatabase = errors.New("configured store is not backed by a SQL database")

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	var driverName string

	switch cfg.Type {
	case config.DBTypeSQLite:
		driverName = SQLiteDriverName
	case config.DBTypePostgreSQL:
		driverName = "pgx"
	default:
		return nil, ErrNoDatabase
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsSQLite() {
		// One connection keeps a shared in-memory database alive and avoids
		// table locks between pooled connections.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}
