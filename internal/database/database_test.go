package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "survival.db")
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.SaveSlot{}))
	assert.True(t, db.Migrator().HasTable(&models.TurnRecord{}))
	assert.NotEmpty(t, sqlitePath(db))

	// 锁文件在迁移结束后释放
	assert.NoFileExists(t, dsn+".migration.lock")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMemoryDatabaseHasNoPath(t *testing.T) {
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent", MaxOpenConns: 1})
	require.NoError(t, err)
	assert.Empty(t, sqlitePath(db))
	require.NoError(t, Migrate(db))
}
