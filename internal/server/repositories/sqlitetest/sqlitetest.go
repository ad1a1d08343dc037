// Package sqlitetest opens throwaway in-memory SQLite databases with the
// server schema applied, for repository and service tests.
package sqlitetest

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"

	"github.com/dmitrijs2005/gophnotes/internal/server/migrations"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Open returns a migrated database private to the test. It is closed
// when the test finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	fsys, err := fs.Sub(migrations.Migrations, migrations.SQLiteDir)
	require.NoError(t, err)

	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	require.NoError(t, err)

	_, err = p.Up(context.Background())
	require.NoError(t, err)

	return db
}
