package db

import (
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskledger/internal/config"
	"taskledger/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle", DatabaseDSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMySQLDSN_ReportsMatchedRows(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"plain", "ledger:secret@tcp(localhost:3306)/taskledger?parseTime=true"},
		{"explicitly off", "ledger:secret@tcp(localhost:3306)/taskledger?clientFoundRows=false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := mysqlDSN(tt.dsn)
			require.NoError(t, err)

			cfg, err := mysqldriver.ParseDSN(dsn)
			require.NoError(t, err)
			assert.True(t, cfg.ClientFoundRows)
			assert.Equal(t, "taskledger", cfg.DBName)
		})
	}
}

func TestMySQLDSN_Invalid(t *testing.T) {
	_, err := mysqlDSN("not a dsn")
	assert.ErrorContains(t, err, "parse mysql dsn")
}

func TestMigrateAndReset_SQLite(t *testing.T) {
	gormDB, err := Open(&config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: "file:migrate_reset?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))
	for _, table := range model.All() {
		assert.True(t, gormDB.Migrator().HasTable(table))
	}

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.Task{}))
}
