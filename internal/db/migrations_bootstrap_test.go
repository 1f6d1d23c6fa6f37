package db

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/terraincognita07/cyclecore/internal/logger"
	"gorm.io/gorm"
)

func openSQLiteForTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func appliedVersions(t *testing.T, database *gorm.DB) []int {
	t.Helper()

	var versions []int
	if err := database.Model(&schemaMigration{}).Order("version").Pluck("version", &versions).Error; err != nil {
		t.Fatalf("load applied versions: %v", err)
	}
	return versions
}

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "nested", "cyclecore-clean.db"))

	expectedColumns := map[string][]string{
		"cycle_preferences":            {"user_id", "avg_cycle_days", "avg_period_days", "last_period_start"},
		"period_spans":                 {"id", "user_id", "start", "end", "cycle_length_days", "period_length_days"},
		"daily_logs":                   {"id", "user_id", "date", "mood", "symptoms", "habits", "flow", "note"},
		"learning_state_records":       {"user_id", "payload", "updated_at"},
		"synthetic_population_records": {"population_key", "payload", "created_at"},
	}
	for table, columns := range expectedColumns {
		for _, column := range columns {
			if !database.Migrator().HasColumn(table, column) {
				t.Errorf("expected column %s.%s", table, column)
			}
		}
	}
	if !database.Migrator().HasIndex("daily_logs", "uidx_logs_user_date") {
		t.Error("expected unique log index")
	}

	if got := appliedVersions(t, database); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected migrations 1 and 2 applied, got %v", got)
	}
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cyclecore-idempotent.db")

	first, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	before := appliedVersions(t, first)
	sqlDB, _ := first.DB()
	_ = sqlDB.Close()

	second := openSQLiteForTest(t, databasePath)
	if after := appliedVersions(t, second); !reflect.DeepEqual(before, after) {
		t.Fatalf("expected no new migrations on reopen, before=%v after=%v", before, after)
	}
}

func TestMigrateAppliesPendingFilesInOrder(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "cyclecore-migrate.db"))
	log := logger.NewNop()

	source := fstest.MapFS{
		"0004_note_tags.sql":   {Data: []byte(`ALTER TABLE daily_logs ADD COLUMN tags TEXT;`)},
		"0003_log_source.sql":  {Data: []byte("ALTER TABLE daily_logs ADD COLUMN source TEXT;\nCREATE INDEX idx_logs_source ON daily_logs(source);")},
		"0002_populations.sql": {Data: []byte(`SELECT 2;`)},
		"0001_init.sql":        {Data: []byte(`SELECT 1;`)},
		"README.md":            {Data: []byte("ignored")},
	}
	applied, err := migrate(database, source, log)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 pending files applied, got %d", applied)
	}
	if !database.Migrator().HasColumn("daily_logs", "source") || !database.Migrator().HasColumn("daily_logs", "tags") {
		t.Fatal("expected new columns")
	}
	if got := appliedVersions(t, database); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("unexpected applied versions %v", got)
	}

	if applied, err := migrate(database, source, log); err != nil || applied != 0 {
		t.Fatalf("expected rerun to be a no-op, applied=%d err=%v", applied, err)
	}
}

func TestMigrateSkipsExistingColumns(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "cyclecore-patched.db"))
	if err := database.Exec(`ALTER TABLE daily_logs ADD COLUMN source TEXT`).Error; err != nil {
		t.Fatalf("patch table: %v", err)
	}

	source := fstest.MapFS{
		"0003_log_source.sql": {Data: []byte(`ALTER TABLE "daily_logs" ADD COLUMN "source" TEXT;`)},
	}
	if applied, err := migrate(database, source, logger.NewNop()); err != nil || applied != 1 {
		t.Fatalf("expected patched column to be skipped, applied=%d err=%v", applied, err)
	}
}

func TestMigrateRollsBackFailedFile(t *testing.T) {
	database := openSQLiteForTest(t, filepath.Join(t.TempDir(), "cyclecore-rollback.db"))

	source := fstest.MapFS{
		"0003_broken.sql": {Data: []byte("CREATE TABLE scratch (id INTEGER);\nINSERT INTO missing_table VALUES (1);")},
	}
	if _, err := migrate(database, source, logger.NewNop()); err == nil {
		t.Fatal("expected broken migration to fail")
	}
	if database.Migrator().HasTable("scratch") {
		t.Fatal("expected failed migration to roll back")
	}
	if got := appliedVersions(t, database); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("expected failed migration not recorded, got %v", got)
	}
}

func TestReadMigrationFilesRejectsBadSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source fstest.MapFS
		target error
	}{
		{
			name: "duplicate version",
			source: fstest.MapFS{
				"0002_a.sql":  {Data: []byte("SELECT 1;")},
				"002_b.sql":   {Data: []byte("SELECT 2;")},
				"0001_ok.sql": {Data: []byte("SELECT 3;")},
			},
		},
		{
			name:   "empty file",
			source: fstest.MapFS{"0001_empty.sql": {Data: []byte(" ;\n ; ")}},
			target: ErrEmptyMigration,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := readMigrationFiles(test.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if test.target != nil && !errors.Is(err, test.target) {
				t.Fatalf("expected %v, got %v", test.target, err)
			}
		})
	}
}

func TestSplitSQLStatements(t *testing.T) {
	t.Parallel()

	got := splitSQLStatements("CREATE TABLE a (id INTEGER);\n\n  ;CREATE INDEX i ON a(id);  ")
	want := []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX i ON a(id)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
