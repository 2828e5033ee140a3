package supagrator

import (
	"database/sql"

	"github.com/jackc/pgx/v5/stdlib"
)

// openPostgres builds a *sql.DB on the pgx driver from a connection config
// that has already been checked to require TLS.
func openPostgres(cfg Config) (*sql.DB, error) {
	connConfig, err := cfg.PgxConfig()
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*connConfig), nil
}
