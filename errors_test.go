package supagrator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		expected Outcome
	}{
		{
			name:     "nil is applied",
			err:      nil,
			expected: OutcomeApplied,
		},
		{
			name:     "duplicate table SQLSTATE",
			err:      &pgconn.PgError{Code: pgerrcode.DuplicateTable, Message: `relation "a" already exists`},
			expected: OutcomeSkipped,
		},
		{
			name:     "duplicate object SQLSTATE without the phrase",
			err:      &pgconn.PgError{Code: pgerrcode.DuplicateObject, Message: "policy exists"},
			expected: OutcomeSkipped,
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, Message: `duplicate key value violates unique constraint "t_pkey"`},
			expected: OutcomeSkipped,
		},
		{
			name:     "wrapped postgres conflict",
			err:      fmt.Errorf("outer: %w", &pgconn.PgError{Code: pgerrcode.DuplicateSchema}),
			expected: OutcomeSkipped,
		},
		{
			name:     "sqlite unique constraint",
			err:      sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			expected: OutcomeSkipped,
		},
		{
			name:     "already exists in a plain message",
			err:      errors.New("table plans already exists"),
			expected: OutcomeSkipped,
		},
		{
			name:     "duplicate key in a plain message",
			err:      errors.New("duplicate key in index"),
			expected: OutcomeSkipped,
		},
		{
			name:     "undefined table",
			err:      &pgconn.PgError{Code: pgerrcode.UndefinedTable, Message: `relation "missing" does not exist`},
			expected: OutcomeFailed,
		},
		{
			name:     "generic error",
			err:      errors.New("near \"CREAT\": syntax error"),
			expected: OutcomeFailed,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.err))
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeApplied.Counted())
	assert.True(t, OutcomeSkipped.Counted())
	assert.False(t, OutcomeFailed.Counted())

	assert.Equal(t, "applied", OutcomeApplied.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "Outcome(7)", Outcome(7).String())
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t,
		`relation "a" already exists (SQLSTATE 42P07)`,
		ErrorDetail(&pgconn.PgError{Code: pgerrcode.DuplicateTable, Message: `relation "a" already exists`}),
	)
	assert.Equal(t,
		`duplicate key value violates unique constraint "t_pkey": Key (id)=(1) already exists. (SQLSTATE 23505)`,
		ErrorDetail(&pgconn.PgError{
			Code:    pgerrcode.UniqueViolation,
			Message: `duplicate key value violates unique constraint "t_pkey"`,
			Detail:  "Key (id)=(1) already exists.",
		}),
	)
	assert.Equal(t, "boom", ErrorDetail(errors.New("boom")))
}

func TestIsAuthFailure(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "SQLSTATE 28P01",
			err:      &pgconn.PgError{Code: pgerrcode.InvalidPassword},
			expected: true,
		},
		{
			name: "message inside a connection error",
			err: &ConnectionError{
				Driver: "pg",
				Err:    errors.New(`failed SASL auth: FATAL: password authentication failed for user "postgres" (SQLSTATE 28P01)`),
			},
			expected: true,
		},
		{
			name:     "refused",
			err:      &ConnectionError{Driver: "pg", Err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")},
			expected: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsAuthFailure(tc.err))
		})
	}
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ConnectionError{Driver: "pg", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to connect to pg database: connection refused", err.Error())
}
