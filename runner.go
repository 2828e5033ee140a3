package supagrator

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"
)

// Result tallies one pass over the statement list.
type Result struct {
	Total int

	// Succeeded counts applied and skipped statements.
	Succeeded int
	Skipped   int
	Failed    int

	// FailedStatements holds the 1-based indexes of failed statements.
	FailedStatements []int
}

// Runner executes statements in order against a Client.
type Runner struct {
	client Client
	out    io.Writer
	logger zerolog.Logger
}

// NewRunner creates a Runner that prints progress to out.
func NewRunner(client Client, out io.Writer, logger zerolog.Logger) *Runner {
	return &Runner{
		client: client,
		out:    out,
		logger: logger,
	}
}

// Run executes every statement, printing one line per statement, and then
// commits once. Statement errors never stop the loop; only a cancelled
// context or a failed commit produce an error.
func (r *Runner) Run(ctx context.Context, statements []string) (Result, error) {
	res := Result{Total: len(statements)}

	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("stopped before statement %d: %w", i+1, err)
		}

		err := r.client.Exec(ctx, stmt)
		outcome := Classify(err)
		r.logger.Debug().
			Int("statement", i+1).
			Stringer("outcome", outcome).
			Err(err).
			Msg("executed statement")

		switch outcome {
		case OutcomeApplied:
			res.Succeeded++
			fmt.Fprintln(r.out, progressLine(res.Succeeded, res.Total))
		case OutcomeSkipped:
			res.Succeeded++
			res.Skipped++
			fmt.Fprintln(r.out, warningLine(err))
		case OutcomeFailed:
			res.Failed++
			res.FailedStatements = append(res.FailedStatements, i+1)
			fmt.Fprintln(r.out, failureLine(i+1, err))
		}
	}

	if err := r.client.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit migration: %w", err)
	}
	return res, nil
}

// percent returns round(part / total * 100), or 100 when total is zero.
func percent(part, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
