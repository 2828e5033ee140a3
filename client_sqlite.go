package supagrator

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// openSqlite3 opens cfg.Database as a SQLite file, or an in-memory database
// for ":memory:". It is meant for rehearsing a migration locally.
func openSqlite3(cfg Config) (*sql.DB, error) {
	return sql.Open("sqlite3", cfg.Database)
}
