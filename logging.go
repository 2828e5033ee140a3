package supagrator

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultLevel = zerolog.InfoLevel

// NewLogger initializes and configures a new zerolog.Logger that writes to
// out. Every logger carries a run_id so the lines of one invocation can be
// grouped.
func NewLogger(cfg Logging, out io.Writer) (zerolog.Logger, error) {
	level := defaultLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Level, err)
		}

		level = l
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger().
		Level(level)

	return logger, nil
}
