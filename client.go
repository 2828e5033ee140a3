package supagrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Client is an open session against the target database. All statements run
// inside one transaction that Commit makes durable.
type Client interface {
	// Exec runs one statement. A failing statement is rolled back to its own
	// savepoint so the transaction stays usable for the next one.
	Exec(ctx context.Context, statement string) error
	Commit() error
	Close() error
}

// ConnectFunc opens a Client for cfg.
type ConnectFunc func(ctx context.Context, cfg Config) (Client, error)

// Connect opens the database named by cfg and begins the run's transaction.
// Any failure is returned as a *ConnectionError.
func Connect(ctx context.Context, cfg Config) (Client, error) {
	var (
		db  *sql.DB
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "pg":
		db, err = openPostgres(cfg)
	case "sqlite3":
		db, err = openSqlite3(cfg)
	default:
		err = fmt.Errorf("db driver '%s' not supported. Must be one of: sqlite3 or pg", cfg.Driver)
	}
	if err != nil {
		return nil, &ConnectionError{Driver: cfg.Driver, Err: err}
	}

	c, err := newBaseClient(ctx, cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Driver: cfg.Driver, Err: err}
	}
	return c, nil
}

const savepointName = "supagrator_statement"

// BaseClient holds the driver-independent session state.
type BaseClient struct {
	Config Config
	DB     *sql.DB
	Tx     *sql.Tx
}

func newBaseClient(ctx context.Context, cfg Config, db *sql.DB) (*BaseClient, error) {
	// One session for the whole run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &BaseClient{Config: cfg, DB: db, Tx: tx}, nil
}

// Exec executes statement between a savepoint and its release.
func (c *BaseClient) Exec(ctx context.Context, statement string) error {
	if _, err := c.Tx.ExecContext(ctx, "SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if _, err := c.Tx.ExecContext(ctx, statement); err != nil {
		if _, rbErr := c.Tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint also failed: %v)", err, rbErr)
		}
		if _, relErr := c.Tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); relErr != nil {
			return fmt.Errorf("%w (release savepoint also failed: %v)", err, relErr)
		}
		return err
	}
	if _, err := c.Tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

// Commit commits every statement that was applied.
func (c *BaseClient) Commit() error {
	return c.Tx.Commit()
}

// Close rolls back an uncommitted transaction and closes the connection.
func (c *BaseClient) Close() error {
	// Rollback after Commit only reports sql.ErrTxDone.
	_ = c.Tx.Rollback()
	return c.DB.Close()
}
