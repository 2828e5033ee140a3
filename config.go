package supagrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PasswordEnvVar names the environment variable that carries the database
// password. It is read once at start-up and never logged.
const PasswordEnvVar = "SUPABASE_DB_PASSWORD"

// Logging controls the diagnostic logger written to stderr.
type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

// Config holds settings for a single migration run. It is built once by the
// CLI and passed down; nothing in this package reads the environment itself.
type Config struct {
	// Driver is the database driver, "pg" or "sqlite3".
	Driver string `koanf:"driver" json:"driver,omitempty"`

	Host     string `koanf:"host" json:"host,omitempty"`
	Port     int    `koanf:"port" json:"port,omitempty"`
	Database string `koanf:"database" json:"database,omitempty"`
	User     string `koanf:"user" json:"user,omitempty"`
	Password string `koanf:"password" json:"password,omitempty"`

	// SSLMode must be one of require, verify-ca or verify-full for "pg".
	SSLMode string `koanf:"ssl_mode" json:"ssl_mode,omitempty"`

	// MigrationFile is the path of the SQL file to apply.
	MigrationFile string `koanf:"migration_file" json:"migration_file,omitempty"`

	// ProjectRef is the Supabase project reference used for dashboard links.
	ProjectRef string `koanf:"project_ref" json:"project_ref,omitempty"`

	// Newline is the line-ending style ("LF", "CR", or "CRLF") applied before
	// the migration checksum is computed. Empty leaves the content untouched.
	Newline string `koanf:"newline" json:"newline,omitempty"`

	// DryRun splits and lists the statements without connecting.
	DryRun bool `koanf:"dry_run" json:"dry_run,omitempty"`

	Logging Logging `koanf:"logging" json:"logging,omitempty"`
}

// DefaultConfig provides the values used when nothing overrides them.
var DefaultConfig = Config{
	Driver:        "pg",
	Host:          "aws-0-us-east-1.pooler.supabase.com",
	Port:          6543,
	Database:      "postgres",
	User:          "postgres.xrbfyrhxygpenmojazde",
	SSLMode:       "require",
	MigrationFile: "apps/backend/supabase/migrations/002_complete_schema.sql",
	ProjectRef:    "xrbfyrhxygpenmojazde",
	Logging: Logging{
		Level: "info",
	},
}

var encryptedSSLModes = map[string]struct{}{
	"require":     {},
	"verify-ca":   {},
	"verify-full": {},
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Driver) {
	case "pg":
		if c.Host == "" {
			errs = append(errs, errors.New("host: cannot be empty"))
		}
		if c.Port <= 0 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("port: %d is out of range", c.Port))
		}
		if c.User == "" {
			errs = append(errs, errors.New("user: cannot be empty"))
		}
		if _, ok := encryptedSSLModes[c.SSLMode]; !ok {
			errs = append(errs, fmt.Errorf("ssl_mode: %q is not allowed, must be one of require, verify-ca, verify-full", c.SSLMode))
		}
	case "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("driver: '%s' not supported. Must be one of: sqlite3 or pg", c.Driver))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database: cannot be empty"))
	}
	if c.MigrationFile == "" {
		errs = append(errs, errors.New("migration_file: cannot be empty"))
	}
	switch c.Newline {
	case "", "LF", "CR", "CRLF":
	default:
		errs = append(errs, errors.New("newline: must be one of: LF, CR, CRLF"))
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, fmt.Errorf("logging.level: invalid log level %q: %w", c.Logging.Level, err))
		}
	}
	return errors.Join(errs...)
}

// DSN renders the keyword/value connection string for the "pg" driver.
func (c Config) DSN() string {
	fields := []string{
		fmt.Sprintf("host=%s", c.Host),
		fmt.Sprintf("port=%d", c.Port),
		fmt.Sprintf("dbname=%s", quoteDSNValue(c.Database)),
		fmt.Sprintf("user=%s", quoteDSNValue(c.User)),
		fmt.Sprintf("sslmode=%s", c.SSLMode),
		"application_name=supagrator",
	}
	if c.Password != "" {
		fields = append(fields, fmt.Sprintf("password=%s", quoteDSNValue(c.Password)))
	}
	return strings.Join(fields, " ")
}

// PgxConfig parses the DSN and verifies that the result never falls back to
// an unencrypted channel.
func (c Config) PgxConfig() (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	if connConfig.TLSConfig == nil {
		return nil, fmt.Errorf("ssl_mode %q does not enable TLS", c.SSLMode)
	}
	for _, fb := range connConfig.Fallbacks {
		if fb.TLSConfig == nil {
			return nil, fmt.Errorf("ssl_mode %q permits a plaintext fallback", c.SSLMode)
		}
	}
	return connConfig, nil
}

// DashboardURL returns the Supabase dashboard address for the project.
func (c Config) DashboardURL() string {
	return fmt.Sprintf("https://%s.supabase.co", c.ProjectRef)
}

// quoteDSNValue single-quotes a value when it contains characters that the
// keyword/value format would otherwise split on.
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
