// SPDX-License-Identifier: MIT

// Package supagrator applies a single SQL schema file to a hosted
// PostgreSQL database (a Supabase project by default) over a TLS-only
// connection, reporting every statement as it goes.
//
// The file is split on ';' without any SQL awareness, each fragment runs in
// file order inside one transaction, and the transaction is committed once
// at the end. Statement errors never abort the run: "already exists" and
// "duplicate key" conflicts are reported as warnings and counted as done,
// everything else is reported as an error and skipped.
//
// # Install
//
//	go install github.com/bcomnes/supagrator/cmd/supagrator@latest
//
// # Quick start
//
//	cfg := supagrator.DefaultConfig
//	cfg.Password = os.Getenv(supagrator.PasswordEnvVar)
//
//	logger, _ := supagrator.NewLogger(cfg.Logging, os.Stderr)
//	g := supagrator.NewSupagrator(cfg, afero.NewOsFs(), os.Stdout, logger)
//	if _, err := g.Migrate(context.Background()); err != nil {
//	    os.Exit(1)
//	}
//
// # Configuration
//
// Config is assembled by LoadSources from, in increasing precedence:
//
//   - DefaultConfig
//   - a JSON file
//   - SUPAGRATOR_* environment variables and SUPABASE_DB_PASSWORD
//   - command-line flags
//
// With nothing set the defaults target the project's pooler endpoint and
// apps/backend/supabase/migrations/002_complete_schema.sql.
//
// # Drivers
//
//   - pg: PostgreSQL through pgx; ssl_mode must be require, verify-ca
//     or verify-full
//   - sqlite3: a local file or ":memory:", handy for rehearsing a file
//
// # Exit codes
//
// The library returns errors; the CLI exits 0 on success and 1 on a missing
// file, a connection failure, or any unexpected error.
package supagrator
