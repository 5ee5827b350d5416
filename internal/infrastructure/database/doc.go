// Package database opens the SQLite file behind the audit export and
// applies its schema migrations.
//
// The control center keeps its live state in memory; SQLite only receives
// an append-only copy of controller events, alerts and access decisions.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and each one runs in its own transaction.
// The path ":memory:" opens a private in-memory database for tests.
package database
