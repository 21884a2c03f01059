package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm/logger"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		in     string
		driver string
		dsn    string
	}{
		{"", driverSQLite, "./portfolio.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"},
		{"sqlite:///./test.db", driverSQLite, "./test.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"},
		{"sqlite:////var/lib/portfolio.db", driverSQLite, "/var/lib/portfolio.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"},
		{"sqlite:///:memory:", driverSQLite, ":memory:?_foreign_keys=1&_busy_timeout=5000"},
		{"data/portfolio.db", driverSQLite, "data/portfolio.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"},
		{"file:p.db?cache=shared", driverSQLite, "file:p.db?cache=shared&_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL"},
		{"postgres://u:p@localhost:5432/portfolio?sslmode=disable", driverPostgres, "postgres://u:p@localhost:5432/portfolio?sslmode=disable"},
		{"postgresql://localhost/portfolio", driverPostgres, "postgresql://localhost/portfolio"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			driver, dsn, err := parseDatabaseURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestParseDatabaseURL_Unsupported(t *testing.T) {
	for _, in := range []string{"mysql://root@localhost/db", "sqlite://"} {
		_, _, err := parseDatabaseURL(in)
		assert.Error(t, err, in)
	}
}

func TestOpenDB_CreatesTables(t *testing.T) {
	cfg := testConfig()
	cfg.DBLogLevel = logger.Info
	db, err := openDB(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeDB(db)

	for _, table := range []string{"projects", "experiences", "skill_categories", "skills", "about", "stats", "contacts", "social_links"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenDB_ForeignKeysEnforced(t *testing.T) {
	db, err := openDB(testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeDB(db)

	err = db.Create(&Skill{Name: "orphan", CategoryID: 77}).Error
	assert.Error(t, err)

	cat := SkillCategory{Name: "Backend"}
	require.NoError(t, db.Create(&cat).Error)
	require.NoError(t, db.Create(&Skill{Name: "Go", CategoryID: cat.ID}).Error)

	// Storage cascades even without the application-level delete.
	require.NoError(t, db.Delete(&SkillCategory{}, cat.ID).Error)
	var n int64
	require.NoError(t, db.Model(&Skill{}).Count(&n).Error)
	assert.Zero(t, n)
}
