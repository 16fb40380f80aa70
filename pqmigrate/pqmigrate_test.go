package pqmigrate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbpq/nbpq/pqmigrate"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadParsesAndSortsByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2-add_index.sql", "create index idx on t(a);")
	writeFile(t, dir, "10-add_column.sql", "alter table t add column b int;")
	writeFile(t, dir, "1-create_table.sql", "create table t (a int);")
	writeFile(t, dir, "notes.txt", "not a migration")

	migrations, err := pqmigrate.Load(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 3)

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "create_table", migrations[0].Name)
	assert.Equal(t, "create table t (a int);", migrations[0].SQL)

	assert.Equal(t, int64(2), migrations[1].Version)
	assert.Equal(t, int64(10), migrations[2].Version)
}

func TestLoadIgnoresNonMatchingFilenames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "hello")
	writeFile(t, dir, "abc-not_versioned.sql", "select 1;")

	migrations, err := pqmigrate.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestLoadErrorsOnMissingDir(t *testing.T) {
	_, err := pqmigrate.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
