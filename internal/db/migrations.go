package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecore/internal/logger"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+"?(\w+)"?\s+ADD\s+COLUMN\s+"?(\w+)"?`)
)

var ErrEmptyMigration = errors.New("migration has no statements")

// schemaMigration records one applied migration file.
type schemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

type migrationFile struct {
	version    int
	name       string
	statements []string
}

// migrate applies every pending NNNN_name.sql file in source, oldest first,
// each in its own transaction. It returns how many files were applied.
func migrate(database *gorm.DB, source fs.FS, log *logger.Logger) (int, error) {
	if err := database.AutoMigrate(&schemaMigration{}); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := readMigrationFiles(source)
	if err != nil {
		return 0, err
	}

	var applied []int
	if err := database.Model(&schemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return 0, fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[int]struct{}, len(applied))
	for _, version := range applied {
		done[version] = struct{}{}
	}

	count := 0
	for _, file := range files {
		if _, ok := done[file.version]; ok {
			continue
		}
		if err := database.Transaction(func(tx *gorm.DB) error {
			return applyMigrationFile(tx, file)
		}); err != nil {
			return count, err
		}
		log.Info("applied migration", "version", file.version, "name", file.name)
		count++
	}
	return count, nil
}

func readMigrationFiles(source fs.FS) ([]migrationFile, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	byVersion := make(map[int]string, len(entries))
	for _, entry := range entries {
		matches := migrationNamePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || matches == nil {
			continue
		}
		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", entry.Name(), err)
		}
		if previous, duplicate := byVersion[version]; duplicate {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, previous, entry.Name())
		}
		byVersion[version] = entry.Name()

		content, err := fs.ReadFile(source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s: %w", entry.Name(), ErrEmptyMigration)
		}
		files = append(files, migrationFile{version: version, name: entry.Name(), statements: statements})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].version < files[j].version
	})
	return files, nil
}

// applyMigrationFile skips ADD COLUMN statements whose column already exists
// so files stay re-runnable against databases patched by hand.
func applyMigrationFile(tx *gorm.DB, file migrationFile) error {
	for _, statement := range file.statements {
		if table, column, ok := addedColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
			continue
		}
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("migration %s: %w", file.name, err)
		}
	}
	record := schemaMigration{Version: file.version, Name: file.name, AppliedAt: time.Now().UTC()}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", file.name, err)
	}
	return nil
}

func addedColumn(statement string) (string, string, bool) {
	matches := addColumnPattern.FindStringSubmatch(strings.TrimSpace(statement))
	if matches == nil {
		return "", "", false
	}
	return matches[1], matches[2], true
}

func splitSQLStatements(sqlText string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
