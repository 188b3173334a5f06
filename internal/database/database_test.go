package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taiwoajasa245/confession-api/pkg/config"
)

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var versions []string
	require.NoError(t, db.DB().SelectContext(ctx, &versions, "SELECT version FROM schema_migrations ORDER BY version"))
	assert.Equal(t, []string{"0001_init", "0002_reading_plans"}, versions)

	for _, table := range []string{"verses", "confessions", "daily_content", "reading_plans", "digest_deliveries"} {
		var n int
		require.NoError(t, db.DB().GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table), table)
	}
}

func TestHealth(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	stats := db.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, DriverSQLite, stats["driver"])
	assert.Contains(t, stats, "open_connections")
}

func TestHealthDown(t *testing.T) {
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	stats := db.Health()
	assert.Equal(t, "down", stats["status"])
	assert.NotEmpty(t, stats["error"])
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "oracle"}, nil)
	assert.ErrorContains(t, err, "oracle")
}

func TestStatements(t *testing.T) {
	got := statements("CREATE TABLE a (x INT);\n\n  CREATE INDEX i ON a (x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"}, got)
}
