package supagrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig.Validate())
	})

	t.Run("plaintext ssl modes are rejected", func(t *testing.T) {
		for _, mode := range []string{"disable", "allow", "prefer", ""} {
			cfg := DefaultConfig
			cfg.SSLMode = mode
			err := cfg.Validate()
			require.Error(t, err, mode)
			assert.Contains(t, err.Error(), "ssl_mode")
		}
	})

	t.Run("encrypted ssl modes are accepted", func(t *testing.T) {
		for _, mode := range []string{"require", "verify-ca", "verify-full"} {
			cfg := DefaultConfig
			cfg.SSLMode = mode
			assert.NoError(t, cfg.Validate(), mode)
		}
	})

	t.Run("sqlite3 ignores network settings", func(t *testing.T) {
		cfg := Config{
			Driver:        "sqlite3",
			Database:      ":memory:",
			MigrationFile: "schema.sql",
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := Config{
			Driver:  "mysql",
			Newline: "NL",
			Logging: Logging{Level: "loud"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		for _, key := range []string{"driver", "database", "migration_file", "newline", "logging.level"} {
			assert.Contains(t, err.Error(), key)
		}
	})
}

func TestConfigDSN(t *testing.T) {
	cfg := DefaultConfig
	assert.Equal(t,
		"host=aws-0-us-east-1.pooler.supabase.com port=6543 dbname=postgres user=postgres.xrbfyrhxygpenmojazde sslmode=require application_name=supagrator",
		cfg.DSN(),
	)

	cfg.Password = `it's a secret`
	assert.Contains(t, cfg.DSN(), `password='it\'s a secret'`)
}

func TestConfigPgxConfig(t *testing.T) {
	t.Run("require has TLS and no fallback", func(t *testing.T) {
		cfg := DefaultConfig
		cfg.Password = "hunter2"

		connConfig, err := cfg.PgxConfig()
		require.NoError(t, err)
		assert.NotNil(t, connConfig.TLSConfig)
		assert.Empty(t, connConfig.Fallbacks)
		assert.Equal(t, "hunter2", connConfig.Password)
		assert.Equal(t, uint16(6543), connConfig.Port)
	})

	t.Run("prefer is refused", func(t *testing.T) {
		cfg := DefaultConfig
		cfg.SSLMode = "prefer"

		_, err := cfg.PgxConfig()
		assert.ErrorContains(t, err, "plaintext fallback")
	})

	t.Run("disable is refused", func(t *testing.T) {
		cfg := DefaultConfig
		cfg.SSLMode = "disable"

		_, err := cfg.PgxConfig()
		assert.ErrorContains(t, err, "does not enable TLS")
	})
}

func TestConfigDashboardURL(t *testing.T) {
	assert.Equal(t, "https://xrbfyrhxygpenmojazde.supabase.co", DefaultConfig.DashboardURL())
}

func TestLoadSources(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		cfg, err := LoadSources()
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig, cfg)
	})

	t.Run("precedence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "supagrator.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"host": "file-host",
			"port": 5432,
			"user": "file-user",
			"migration_file": "file.sql",
			"logging": {"level": "warn"}
		}`), 0o644))

		t.Setenv("SUPAGRATOR_HOST", "env-host")
		t.Setenv("SUPAGRATOR_LOGGING__LEVEL", "debug")
		t.Setenv(PasswordEnvVar, "from-env")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("host", "", "")
		flags.String("migration-file", "", "")
		flags.Bool("dry-run", false, "")
		flags.Bool("logging.pretty", false, "")
		require.NoError(t, flags.Parse([]string{"--migration-file", "flag.sql", "--dry-run"}))

		cfg, err := LoadSources(
			NewJSONFileSource(path),
			NewEnvVarSource(),
			NewPasswordSource(),
			NewPFlagSource(flags),
		)
		require.NoError(t, err)

		expected := DefaultConfig
		expected.Host = "env-host"
		expected.Port = 5432
		expected.User = "file-user"
		expected.Password = "from-env"
		expected.MigrationFile = "flag.sql"
		expected.DryRun = true
		expected.Logging.Level = "debug"
		assert.Equal(t, expected, cfg)
	})

	t.Run("unset password stays empty", func(t *testing.T) {
		t.Setenv(PasswordEnvVar, "")

		cfg, err := LoadSources(NewPasswordSource())
		require.NoError(t, err)
		assert.Empty(t, cfg.Password)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, err := LoadSources(NewStaticSource(map[string]string{"ssl_mode": "disable"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := LoadSources(NewJSONFileSource(filepath.Join(t.TempDir(), "nope.json")))
		assert.ErrorContains(t, err, "failed to load config source")
	})
}
