package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
)

func TestRebind(t *testing.T) {
	pg := &DB{Driver: config.DriverPostgres}
	if got := pg.Rebind("SELECT a FROM t WHERE x = ? AND y IN (?, ?)"); got != "SELECT a FROM t WHERE x = $1 AND y IN ($2, $3)" {
		t.Fatalf("unexpected postgres query: %s", got)
	}
	lite := &DB{Driver: config.DriverSQLite}
	if got := lite.Rebind("x = ?"); got != "x = ?" {
		t.Fatalf("sqlite query should stay unchanged, got %s", got)
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "plan.db")
	db, cleanup, err := OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("expected foreign keys enabled")
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO study_items (id, category_id, position, name, priority, difficulty) VALUES ('x', 99, 0, 'x', 'high', 'high')"); err == nil {
		t.Fatalf("expected foreign key violation")
	}
}
