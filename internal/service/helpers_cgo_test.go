//go:build cgo

package service

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
)

func init() {
	// Shared-cache SQLite takes table-level locks, so a read on a second pool
	// connection fails while an open transaction holds a write lock on that
	// table; read_uncommitted lets same-cache readers proceed, matching the
	// concurrency the services get from Postgres in production.
	sql.Register("sqlite3_shared", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA read_uncommitted = true", nil)
			return err
		},
	})
	testSQLiteDriver = "sqlite3_shared"
}
