package database

import (
	"context"
	"testing"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_MemoryStoreHasNoDatabase(t *testing.T) {
	_, err := Connect(context.Background(), config.DBConfig{Type: config.DBTypeMemory})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Type: config.DBTypeSQLite, Name: "database_migrate_test"}
	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, cfg.Type))
	// A second run is a no-op.
	require.NoError(t, Migrate(db, cfg.Type))

	var tables []string
	err = db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('cities', 'points_of_interest') ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"cities", "points_of_interest"}, tables)

	_, err = db.ExecContext(ctx, "INSERT INTO points_of_interest (city_id, name) VALUES (42, 'Orphan')")
	assert.Error(t, err, "foreign keys must be enforced")
}

func TestConnect_SQLiteUnicodeLower(t *testing.T) {
	ctx := context.Background()
	db, err := Connect(ctx, config.DBConfig{Type: config.DBTypeSQLite, Name: "database_lower_test"})
	require.NoError(t, err)
	defer db.Close()

	var folded string
	require.NoError(t, db.GetContext(ctx, &folded, "SELECT unicode_lower('REYKJAVÍK ZÜRICH')"))
	assert.Equal(t, "reykjavík zürich", folded)
}
