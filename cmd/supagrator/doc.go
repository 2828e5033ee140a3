// SPDX-License-Identifier: MIT

// Package main provides supagrator, a command-line tool that applies one SQL
// migration file to a Supabase PostgreSQL database.
//
// # Install
//
//	go install github.com/bcomnes/supagrator/cmd/supagrator@latest
//
// # Synopsis
//
//	supagrator [flags]
//	supagrator version
//
// # Flags
//
//	-c, --config string          Optional JSON file that mirrors supagrator.Config.
//	    --driver string          "pg" (default) or "sqlite3".
//	    --host string            Database host.
//	    --port int               Database port.
//	    --database string        Database name, or file path for sqlite3.
//	    --user string            Database user.
//	    --ssl-mode string        require (default), verify-ca or verify-full.
//	-f, --migration-file string  SQL file to apply.
//	    --project-ref string     Supabase project used in the fallback instructions.
//	    --newline string         LF, CR or CRLF before checksumming the file.
//	    --dry-run                Print the split statements and exit.
//	-l, --logging.level string   zerolog level for stderr diagnostics.
//	-p, --logging.pretty         Human-readable diagnostics instead of JSON.
//
// *Precedence:* flags ➜ environment ➜ -config file ➜ built-in defaults
//
// # Environment
//
//	SUPABASE_DB_PASSWORD  Database password. Empty when unset.
//	SUPAGRATOR_<KEY>      Any config key, e.g. SUPAGRATOR_HOST,
//	                      SUPAGRATOR_LOGGING__LEVEL.
//
// # Examples
//
//	# Apply the default migration to the default project
//	SUPABASE_DB_PASSWORD=... supagrator
//
//	# Rehearse the file against a throwaway SQLite database
//	supagrator --driver sqlite3 --database :memory: -f schema.sql
//
//	# Show how the file will be split
//	supagrator --dry-run -f schema.sql
//
// # Configuration file
//
//	{
//	  "host":           "db.example.supabase.co",
//	  "port":           5432,
//	  "user":           "postgres",
//	  "migration_file": "supabase/migrations/002_complete_schema.sql",
//	  "logging":        {"level": "debug", "pretty": true}
//	}
//
// # Exit status
//
// 0 when the statement loop completed and the transaction committed, 1 on a
// missing migration file, a connection failure, an invalid configuration,
// or any unexpected error. Each run times out after ten minutes.
package main
