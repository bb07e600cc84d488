package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Contains(t, all[0].UpScript, "uq_contact_requests_pending")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS contact_requests")
	assert.Equal(t, "000001_init", all[0].String())

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("orders by version and skips bad names", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000002_second.up.sql":   {Data: []byte("up2")},
			"m/000002_second.down.sql": {Data: []byte("down2")},
			"m/000001_first.up.sql":    {Data: []byte("up1")},
			"m/000001_first.down.sql":  {Data: []byte("down1")},
			"m/README.md":              {Data: []byte("ignored")},
			"m/nounderscore.up.sql":    {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Version)
		assert.Equal(t, "second", got[1].Name)
		assert.Equal(t, "down2", got[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_first.up.sql": {Data: []byte("up1")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("a")},
			"m/000001_a.down.sql": {Data: []byte("a")},
			"m/000001_b.up.sql":   {Data: []byte("b")},
			"m/000001_b.down.sql": {Data: []byte("b")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.ErrorContains(t, err, "duplicate migration version 1")
	})
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}

func TestMigrationStore(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	store := NewMigrationStore(db)

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err, "a missing log table reads as nothing applied")
	assert.Empty(t, applied)

	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, store.ApplyMigration(ctx, 5, "widgets", "CREATE TABLE widgets (id INTEGER PRIMARY KEY)"))
	assert.True(t, db.Migrator().HasTable("widgets"))

	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, applied)

	err = store.ApplyMigration(ctx, 6, "broken", "CREATE TABLE")
	assert.Error(t, err)

	require.NoError(t, store.RemoveMigration(ctx, 5))
	applied, err = store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
