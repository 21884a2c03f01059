package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

// parseDatabaseURL resolves DATABASE_URL into a driver name and the DSN that
// driver expects. SQLite DSNs get foreign keys, WAL and a busy timeout.
func parseDatabaseURL(raw string) (driver, dsn string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultDatabaseURL
	}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return driverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		// sqlite:///./portfolio.db is relative, sqlite:////var/db/p.db absolute.
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return "", "", fmt.Errorf("database url %q has no path", raw)
		}
		return driverSQLite, sqliteDSN(path), nil
	case strings.Contains(raw, "://"):
		return "", "", fmt.Errorf("unsupported database url scheme in %q", raw)
	default:
		return driverSQLite, sqliteDSN(raw), nil
	}
}

func sqliteDSN(path string) string {
	params := "_foreign_keys=1&_busy_timeout=5000"
	if !strings.Contains(path, ":memory:") && !strings.Contains(path, "mode=memory") {
		params += "&_journal_mode=WAL"
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// openDB connects to the configured store and creates any missing tables.
func openDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	driver, dsn, err := parseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch driver {
	case driverPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log, cfg.DBLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	if driver == driverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("getting sql handle: %w", err)
		}
		// One connection serializes writers and keeps :memory: databases alive.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrate(db); err != nil {
		_ = closeDB(db)
		return nil, err
	}

	log.Info("Database ready", zap.String("driver", driver))
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
