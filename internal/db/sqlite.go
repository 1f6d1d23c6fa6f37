package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/cyclecore/internal/logger"
	embeddedmigrations "github.com/terraincognita07/cyclecore/migrations"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// OpenSQLite opens (creating if needed) the database at dbPath and applies
// the embedded migrations. gorm warnings go to log; nil discards them.
func OpenSQLite(dbPath string, log *logger.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	log = log.With("component", "db")

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	applied, err := migrate(database, embeddedmigrations.Files, log)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	if applied > 0 {
		log.Info("database migrated", "path", dbPath, "applied", applied)
	}
	return database, nil
}
