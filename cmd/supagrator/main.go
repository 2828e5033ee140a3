package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/bcomnes/supagrator"
)

var versionString = supagrator.Version

// runTimeout bounds a whole invocation.
const runTimeout = 10 * time.Minute

// reportedError marks an error whose explanation was already printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "supagrator",
		Short: "Apply a SQL migration file to a Supabase PostgreSQL database",
		Long: `supagrator reads a SQL migration file, splits it on ';' and executes every
statement in order over a TLS connection. "already exists" and "duplicate key"
errors are reported as warnings; other statement errors are reported and
skipped. All applied statements are committed once at the end.

The database password is read from ` + supagrator.PasswordEnvVar + `.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Source order determines precedence. The last source loaded will
			// override any previous values.
			var sources []*supagrator.Source
			if configPath != "" {
				sources = append(sources, supagrator.NewJSONFileSource(configPath))
			}
			sources = append(sources,
				supagrator.NewEnvVarSource(),
				supagrator.NewPasswordSource(),
				supagrator.NewPFlagSource(cmd.Flags()),
			)

			cfg, err := supagrator.LoadSources(sources...)
			if err != nil {
				return fmt.Errorf("failed to load configs: %w", err)
			}

			logger, err := supagrator.NewLogger(cfg.Logging, stderr)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			g := supagrator.NewSupagrator(cfg, afero.NewOsFs(), stdout, logger)
			if _, err := g.Migrate(ctx); err != nil {
				return reportedError{err: err}
			}
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a JSON configuration file.")
	flags.String("driver", "", `Database driver: "pg" or "sqlite3" (default "pg")`)
	flags.String("host", "", "Database host (default the Supabase pooler)")
	flags.Int("port", 0, "Database port (default 6543)")
	flags.String("database", "", `Database name, or file for sqlite3 (default "postgres")`)
	flags.String("user", "", "Database user")
	flags.String("ssl-mode", "", `TLS mode: require, verify-ca or verify-full (default "require")`)
	flags.StringP("migration-file", "f", "", "Path of the SQL migration file")
	flags.String("project-ref", "", "Supabase project reference used for dashboard links")
	flags.String("newline", "", "Normalize line endings (LF, CR, CRLF) before checksumming")
	flags.Bool("dry-run", false, "List the statements without connecting")
	flags.StringP("logging.level", "l", "", "The logging level, e.g. 'debug', 'info', 'error', etc.")
	flags.BoolP("logging.pretty", "p", false, "Use pretty logging instead of JSON logging.")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "supagrator version:", versionString)
		},
	})

	return rootCmd
}
