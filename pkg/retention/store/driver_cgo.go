//go:build cgo

package store

import (
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDriver is the database/sql driver name for cgo builds.
const sqliteDriver = "sqlite3"

// sqliteDSN builds a connection string whose pragmas apply to every pooled
// connection. Pragmas issued with a one-shot Exec would only configure the
// single connection that happened to run them.
func sqliteDSN(config *SQLiteConfig) string {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", config.Path, config.BusyTimeout.Milliseconds())
	if config.WALMode {
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return dsn
}
