package supagrator

import (
	"fmt"
	"io"
	"strings"
)

const rule = "======================================================================"

// WriteSummary prints what the migration is expected to have created. The
// counts describe the contents of the schema file; they are not measured.
func WriteSummary(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✅ Migration applied successfully!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "📊 Expected changes (from the migration file, not verified):")
	fmt.Fprintln(w, "  ✓ 10 new tables created")
	fmt.Fprintln(w, "  ✓ 23 indexes created")
	fmt.Fprintln(w, "  ✓ Row-Level Security policies enabled")
	fmt.Fprintln(w, "  ✓ Seed data inserted")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "✅ The database is ready to use!")
}

// WriteConnectionFailure prints the connection error, a password hint when
// the server rejected the credentials, and the manual fallback procedure.
func WriteConnectionFailure(w io.Writer, cfg Config, err error) {
	fmt.Fprintf(w, "❌ Connection error: %v\n\n", err)

	if IsAuthFailure(err) {
		fmt.Fprintln(w, "💡 The database password looks missing or wrong.")
		fmt.Fprintf(w, "Please set the environment variable: %s\n\n", PasswordEnvVar)
	}

	WriteManualSteps(w, cfg)
}

// WriteManualSteps prints how to apply the migration by hand through the
// Supabase dashboard.
func WriteManualSteps(w io.Writer, cfg Config) {
	steps := []struct {
		title  string
		detail string
	}{
		{"Open the Supabase Dashboard:", cfg.DashboardURL()},
		{"Go to: SQL Editor", ""},
		{"Click: New Query", ""},
		{"Copy the contents of this file:", cfg.MigrationFile},
		{"Paste the contents into the SQL Editor", ""},
		{"Click: Run", ""},
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "📌 Fallback: apply the migration manually via the Supabase Dashboard")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Follow these steps:")
	fmt.Fprintln(w)
	for i, s := range steps {
		fmt.Fprintf(w, "%d. %s\n", i+1, s.title)
		if s.detail != "" {
			fmt.Fprintf(w, "   %s\n", s.detail)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// WriteStatementList prints each statement's index and first line.
func WriteStatementList(w io.Writer, statements []string) {
	width := len(fmt.Sprint(len(statements)))
	for i, stmt := range statements {
		fmt.Fprintf(w, "%*d. %s\n", width, i+1, firstLine(stmt))
	}
	if len(statements) == 0 {
		fmt.Fprintln(w, "(no statements)")
	}
}

// progressLine formats the line printed after a counted statement.
func progressLine(succeeded, total int) string {
	return fmt.Sprintf("✓ Applied (%d%%) - Statement %d/%d", percent(succeeded, total), succeeded, total)
}

func warningLine(err error) string {
	return "⚠️  Warning: " + oneLine(ErrorDetail(err))
}

func failureLine(index int, err error) string {
	return fmt.Sprintf("✗ Error in statement %d: %s", index, oneLine(ErrorDetail(err)))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
