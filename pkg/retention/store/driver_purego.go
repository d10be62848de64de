//go:build !cgo

package store

import (
	"fmt"

	_ "modernc.org/sqlite"
)

// sqliteDriver is the database/sql driver name for pure-Go builds.
const sqliteDriver = "sqlite"

// sqliteDSN builds a connection string whose pragmas apply to every pooled
// connection. Pragmas issued with a one-shot Exec would only configure the
// single connection that happened to run them.
func sqliteDSN(config *SQLiteConfig) string {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)", config.Path, config.BusyTimeout.Milliseconds())
	if config.WALMode {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	return dsn
}
