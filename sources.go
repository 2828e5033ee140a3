package supagrator

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix for environment variables that override config
// keys. Nested keys use a double underscore, e.g. SUPAGRATOR_LOGGING__LEVEL.
const EnvPrefix = "SUPAGRATOR_"

// Source is one layer of configuration.
type Source struct {
	Provider func(k *koanf.Koanf) koanf.Provider
	Parser   koanf.Parser
	Options  []koanf.Option
}

func NewJSONFileSource(path string) *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return file.Provider(path)
		},
		Parser: kjson.Parser(),
	}
}

func NewEnvVarSource() *Source {
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return env.Provider(EnvPrefix, ".", func(s string) string {
				s = strings.TrimPrefix(s, EnvPrefix)
				s = strings.ToLower(s)
				return strings.ReplaceAll(s, "__", ".")
			})
		},
	}
}

// NewPasswordSource maps SUPABASE_DB_PASSWORD onto the password key. An unset
// variable contributes nothing, leaving the empty default in place.
func NewPasswordSource() *Source {
	return NewStaticSource(map[string]string{"password": os.Getenv(PasswordEnvVar)})
}

// NewStaticSource loads fixed key/value pairs, skipping empty values.
func NewStaticSource(values map[string]string) *Source {
	set := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" {
			set[k] = v
		}
	}
	raw, _ := json.Marshal(set)
	return &Source{
		Provider: func(_ *koanf.Koanf) koanf.Provider {
			return rawbytes.Provider(raw)
		},
		Parser: kjson.Parser(),
	}
}

func NewPFlagSource(flagSet *pflag.FlagSet) *Source {
	return &Source{
		Provider: func(k *koanf.Koanf) koanf.Provider {
			return posflag.ProviderWithFlag(flagSet, ".", k, func(f *pflag.Flag) (string, interface{}) {
				key := strings.ReplaceAll(f.Name, "-", "_")
				return key, posflag.FlagVal(flagSet, f)
			})
		},
	}
}

// LoadSources merges DefaultConfig with the given sources and validates the
// result. Source order determines precedence: later sources win.
func LoadSources(sources ...*Source) (Config, error) {
	k := koanf.New(".")
	if err := loadStruct(k, DefaultConfig); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, source := range sources {
		if err := k.Load(source.Provider(k), source.Parser, source.Options...); err != nil {
			return Config{}, fmt.Errorf("failed to load config source: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadStruct goes through JSON rather than the structs provider so that
// omitempty keeps zero values from masking defaults.
func loadStruct(k *koanf.Koanf, cfg Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to json: %w", err)
	}
	if err := k.Load(rawbytes.Provider(raw), kjson.Parser()); err != nil {
		return fmt.Errorf("failed to load config from json bytes: %w", err)
	}
	return nil
}
