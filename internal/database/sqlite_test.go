package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "wbs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpen_AppliesMigrations(t *testing.T) {
	conn := openTemp(t)

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 2, count)

	for _, table := range []string{"projects", "wbs_tasks"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	conn := openTemp(t)

	require.NoError(t, NewMigrationManager(conn, Migrations()).RunMigrations())

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestLoadMigrations_SortsAndSkipsInvalid(t *testing.T) {
	files := fstest.MapFS{
		"010_later.sql":   {Data: []byte("SELECT 1")},
		"002_earlier.sql": {Data: []byte("SELECT 1")},
		"notes.txt":       {Data: []byte("ignored")},
		"bad_name.sql":    {Data: []byte("SELECT 1")},
	}

	migrations, err := NewMigrationManager(nil, files).LoadMigrations()
	require.NoError(t, err)

	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "002_earlier", migrations[0].Name)
	assert.Equal(t, 10, migrations[1].Version)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	conn := openTemp(t)
	boom := errors.New("boom")

	err := Transaction(conn, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO projects (id, name) VALUES ('p1', 'Alpha')")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	conn := openTemp(t)

	_, err := conn.Exec(`INSERT INTO wbs_tasks (project_id, task_id, position, name) VALUES ('missing', '1', 0, 'x')`)
	assert.Error(t, err)
}
