package db

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return database
}

func TestNew_CreatesSchema(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "nested", "jr3d.db"))
	defer database.Close()

	for _, table := range []string{"archives", "config", "_migrations"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestAppliedMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jr3d.db")
	openTestDB(t, path).Close()

	database := openTestDB(t, path)
	defer database.Close()

	got, err := database.AppliedMigrations(context.Background())
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	want := []string{"001_init.sql", "002_archives.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AppliedMigrations() = %v, want %v", got, want)
	}
}

func TestNew_FailsInterruptedArchives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jr3d.db")
	first := openTestDB(t, path)

	_, err := first.Conn().Exec(`
		INSERT INTO archives (id, kind, status, file_name, created_at, updated_at)
		VALUES ('running-import', 'import', 'running', 'demo.jr3d', '', ''),
		       ('finished-export', 'export', 'completed', 'done.jr3d', '', '')
	`)
	if err != nil {
		t.Fatalf("insert archive error = %v", err)
	}
	first.Close()

	second := openTestDB(t, path)
	defer second.Close()

	var status, errMsg, updatedAt string
	err = second.Conn().QueryRow("SELECT status, error, updated_at FROM archives WHERE id = 'running-import'").
		Scan(&status, &errMsg, &updatedAt)
	if err != nil {
		t.Fatalf("query archive error = %v", err)
	}
	if status != "failed" || errMsg != InterruptedError {
		t.Errorf("interrupted archive = (%s, %q), want (failed, %q)", status, errMsg, InterruptedError)
	}
	if _, err := time.Parse(TimeLayout, updatedAt); err != nil {
		t.Errorf("updated_at %q does not use TimeLayout: %v", updatedAt, err)
	}

	if err := second.Conn().QueryRow("SELECT status FROM archives WHERE id = 'finished-export'").Scan(&status); err != nil {
		t.Fatalf("query archive error = %v", err)
	}
	if status != "completed" {
		t.Errorf("completed archive status = %s, want completed", status)
	}
}

func TestArchives_CheckConstraints(t *testing.T) {
	database := openTestDB(t, filepath.Join(t.TempDir(), "jr3d.db"))
	defer database.Close()

	tests := []struct {
		name   string
		kind   string
		status string
	}{
		{"unknown kind", "scan", "running"},
		{"unknown status", "export", "queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := database.Conn().Exec(`
				INSERT INTO archives (id, kind, status, file_name, created_at, updated_at)
				VALUES (?, ?, ?, 'x.jr3d', '', '')`, tt.name, tt.kind, tt.status)
			if err == nil {
				t.Errorf("insert (%s, %s) should violate a check constraint", tt.kind, tt.status)
			}
		})
	}
}
