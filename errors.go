package supagrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Outcome is the classified result of executing one statement.
type Outcome int

const (
	// OutcomeApplied means the statement ran without error.
	OutcomeApplied Outcome = iota
	// OutcomeSkipped means the statement hit a benign conflict: the object
	// it creates already exists or the row it inserts is already present.
	OutcomeSkipped
	// OutcomeFailed is any other statement error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Counted reports whether the outcome counts toward completion.
func (o Outcome) Counted() bool {
	return o == OutcomeApplied || o == OutcomeSkipped
}

var conflictCodes = map[string]struct{}{
	pgerrcode.DuplicateTable:    {},
	pgerrcode.DuplicateObject:   {},
	pgerrcode.DuplicateSchema:   {},
	pgerrcode.DuplicateFunction: {},
	pgerrcode.DuplicateColumn:   {},
	pgerrcode.DuplicateDatabase: {},
	pgerrcode.UniqueViolation:   {},
}

var sqliteConflictCodes = map[sqlite3.ErrNoExtended]struct{}{
	sqlite3.ErrConstraintUnique:     {},
	sqlite3.ErrConstraintPrimaryKey: {},
}

var conflictPhrases = []string{"already exists", "duplicate key"}

// Classify maps a statement error onto an Outcome. PostgreSQL and SQLite
// errors are matched by code first; every driver's message text is then
// checked for the benign conflict phrases.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeApplied
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := conflictCodes[pgErr.Code]; ok {
			return OutcomeSkipped
		}
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if _, ok := sqliteConflictCodes[sqliteErr.ExtendedCode]; ok {
			return OutcomeSkipped
		}
	}
	msg := err.Error()
	for _, phrase := range conflictPhrases {
		if strings.Contains(msg, phrase) {
			return OutcomeSkipped
		}
	}
	return OutcomeFailed
}

// ErrorDetail returns the database-provided message for err, without the
// driver's own prefixes when the driver exposes it separately.
func ErrorDetail(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Detail != "" {
			return fmt.Sprintf("%s: %s (SQLSTATE %s)", pgErr.Message, pgErr.Detail, pgErr.Code)
		}
		return fmt.Sprintf("%s (SQLSTATE %s)", pgErr.Message, pgErr.Code)
	}
	return err.Error()
}

// ConnectionError is returned when the database cannot be reached or refuses
// the session.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s database: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsAuthFailure reports whether err indicates that the server rejected the
// password.
func IsAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidPassword {
		return true
	}
	return strings.Contains(err.Error(), "password authentication failed")
}
