package supagrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Supagrator applies one migration file to the configured database.
//
// It reads the file, opens a single session, runs each statement through a
// Runner and prints a report. Failures are printed with actionable guidance
// and returned so the caller can pick an exit code.
type Supagrator struct {
	cfg    Config
	fs     afero.Fs
	out    io.Writer
	logger zerolog.Logger

	// Connect opens the database session. It defaults to the package-level
	// Connect and may be replaced in tests.
	Connect ConnectFunc
}

// NewSupagrator creates a Supagrator that reads from fsys and prints its
// report to out.
func NewSupagrator(cfg Config, fsys afero.Fs, out io.Writer, logger zerolog.Logger) *Supagrator {
	return &Supagrator{
		cfg:     cfg,
		fs:      fsys,
		out:     out,
		logger:  logger,
		Connect: Connect,
	}
}

// ReadMigration loads the configured migration file. A missing file is
// reported on out before the error is returned.
func (g *Supagrator) ReadMigration() (Migration, error) {
	m, err := ReadMigration(g.fs, g.cfg.MigrationFile, g.cfg.Newline)
	if errors.Is(err, ErrFileNotFound) {
		fmt.Fprintf(g.out, "❌ Migration file not found: %s\n", g.cfg.MigrationFile)
		return Migration{}, err
	}
	if err != nil {
		fmt.Fprintf(g.out, "❌ Unexpected error: %v\n", err)
		return Migration{}, err
	}
	return m, nil
}

// Migrate runs the whole procedure. The returned Result is meaningful only
// when the statement loop was reached.
func (g *Supagrator) Migrate(ctx context.Context) (Result, error) {
	fmt.Fprintln(g.out, "🚀 Starting migration on Supabase...")
	fmt.Fprintln(g.out)

	m, err := g.ReadMigration()
	if err != nil {
		return Result{}, err
	}
	fmt.Fprintf(g.out, "✅ Read migration file (%s)\n\n", humanize.Bytes(uint64(m.Size)))
	g.logger.Info().
		Str("file", m.Filename).
		Int("bytes", m.Size).
		Str("md5", m.Md5).
		Msg("loaded migration")

	statements := m.Statements()

	if g.cfg.DryRun {
		fmt.Fprintf(g.out, "Dry run: %d statements, nothing will be executed.\n\n", len(statements))
		WriteStatementList(g.out, statements)
		return Result{Total: len(statements)}, nil
	}

	fmt.Fprintln(g.out, "🔗 Connecting to Supabase PostgreSQL...")
	client, err := g.Connect(ctx, g.cfg)
	if err != nil {
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			g.logger.Error().Err(err).Msg("connection failed")
			WriteConnectionFailure(g.out, g.cfg, err)
			return Result{}, err
		}
		fmt.Fprintf(g.out, "❌ Unexpected error: %v\n", err)
		return Result{}, err
	}
	defer func() {
		if err := client.Close(); err != nil {
			g.logger.Warn().Err(err).Msg("failed to close connection")
		}
	}()
	fmt.Fprintln(g.out, "✅ Connected!")
	fmt.Fprintln(g.out)

	fmt.Fprintf(g.out, "⏳ Executing %d SQL statements...\n\n", len(statements))
	res, err := NewRunner(client, g.out, g.logger).Run(ctx, statements)
	if err != nil {
		fmt.Fprintf(g.out, "❌ Unexpected error: %v\n", err)
		return res, err
	}

	g.logger.Info().
		Int("total", res.Total).
		Int("succeeded", res.Succeeded).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Ints("failed_statements", res.FailedStatements).
		Msg("migration finished")

	WriteSummary(g.out)
	return res, nil
}
