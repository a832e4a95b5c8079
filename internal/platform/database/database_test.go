package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO attendance (name, user_id) VALUES (?, ?)"
	assert.Equal(t, q, DialectSQLite.Rebind(q))
	assert.Equal(t, "INSERT INTO attendance (name, user_id) VALUES ($1, $2)", DialectPostgres.Rebind(q))
	assert.Equal(t, "SELECT 1", DialectPostgres.Rebind("SELECT 1"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)

	_, err = Open(context.Background(), "sqlite", " ")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"identities", "attendance", "flagged_pairings", "audit_events"} {
		_, err := db.ExecContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1")
		assert.NoError(t, err, table)
	}
}

func TestUniqueViolationSQLite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO identities (user_id, name) VALUES (?, ?)`
	_, err := db.ExecContext(ctx, insert, "jerry", "Whohoo Jerry")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "jerry", "Jerry Again")
	require.Error(t, err)

	constraint, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Empty(t, constraint)

	_, ok = UniqueViolation(errors.New("UNIQUE constraint failed: identities.user_id"))
	assert.False(t, ok, "message text alone must not classify")
}

func TestRunInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		_, err := db.Q(ctx).ExecContext(ctx, `INSERT INTO identities (user_id, name) VALUES (?, ?)`, "tom", "Tom")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count))
	assert.Zero(t, count)
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("-- header\nCREATE TABLE a (x INT);\n\n-- note\nCREATE INDEX b ON a (x);\n")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "CREATE INDEX b")
}
