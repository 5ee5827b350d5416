package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/smartcity-core/migrations"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_100000_create_items.up.sql":   {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"20260101_100000_create_items.down.sql": {Data: []byte("DROP TABLE items;")},
		"20260102_100000_add_tags.up.sql":       {Data: []byte("CREATE TABLE tags (name TEXT);")},
		"README.md":                             {Data: []byte("ignored")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	fsys := testMigrations()

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if !tableExists(t, db, "items") || !tableExists(t, db, "tags") {
		t.Fatal("migrations did not create tables")
	}

	applied, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("applied = %d pending = %d", len(applied), len(pending))
	}
	if applied[0].Version != "20260101_100000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("applied[0] = %+v", applied[0])
	}

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	fsys := testMigrations()
	delete(fsys, "20260102_100000_add_tags.up.sql")

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "items") {
		t.Error("items survived rollback")
	}
	if err := db.MigrateDown(ctx, fsys); err != nil {
		t.Errorf("MigrateDown() with nothing applied = %v", err)
	}
}

func TestMigrateDown_NoDownSQL(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	fsys := fstest.MapFS{"20260102_100000_add_tags.up.sql": {Data: []byte("CREATE TABLE tags (name TEXT);")}}

	if err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, fsys); err == nil {
		t.Error("MigrateDown() without down SQL succeeded")
	}
}

func TestMigrate_FailureRollsBackOnlyThatMigration(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	fsys := fstest.MapFS{
		"20260101_100000_ok.up.sql":     {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"20260102_100000_broken.up.sql": {Data: []byte("CREATE TABLE broken (;")},
	}

	if err := db.Migrate(ctx, fsys); err == nil {
		t.Fatal("Migrate() with broken SQL succeeded")
	}
	if !tableExists(t, db, "ok") {
		t.Error("earlier migration was rolled back")
	}
	_, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil || len(pending) != 1 || pending[0].Name != "broken" {
		t.Errorf("pending = %+v, err = %v", pending, err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file        string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOK      bool
	}{
		{"20260118_120000_initial_schema.up.sql", "20260118_120000", "initial_schema", true, true},
		{"20260118_120000_initial_schema.down.sql", "20260118_120000", "initial_schema", false, true},
		{"20260118_120000.up.sql", "20260118_120000", "20260118_120000", true, true},
		{"20260118.up.sql", "", "", false, false},
		{"20260118_120000_x.sql", "", "", false, false},
		{"notes.txt", "", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			v, n, up, ok := parseMigrationFilename(tt.file)
			if v != tt.wantVersion || n != tt.wantName || up != tt.wantUp || ok != tt.wantOK {
				t.Errorf("parseMigrationFilename(%q) = %q, %q, %v, %v", tt.file, v, n, up, ok)
			}
		})
	}
}

func TestLoadMigrations_DownWithoutUp(t *testing.T) {
	fsys := fstest.MapFS{"20260101_100000_orphan.down.sql": {Data: []byte("DROP TABLE x;")}}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Error("LoadMigrations() accepted an orphan down file")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate(embedded) error = %v", err)
	}
	if !tableExists(t, db, "audit_logs") {
		t.Error("audit_logs table missing")
	}
	if err := db.MigrateDown(ctx, migrations.FS); err != nil {
		t.Fatalf("MigrateDown(embedded) error = %v", err)
	}
	if tableExists(t, db, "audit_logs") {
		t.Error("audit_logs survived rollback")
	}
}
