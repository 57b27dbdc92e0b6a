package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration for helix-cli. The credential keys sit
// at the top level so a credentials file written by "helix-cli configure"
// is also a valid config file.
type Config struct {
	Site        string `mapstructure:"site" validate:"required,url"`
	Reseller    string `mapstructure:"reseller"`
	Company     string `mapstructure:"company"`
	Library     string `mapstructure:"library"`
	LicenseKey  string `mapstructure:"license_key" validate:"required"`
	Contributor string `mapstructure:"contributor"`
	Server      string `mapstructure:"server"`

	Cache CacheConfig `mapstructure:"cache"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Log   LogConfig   `mapstructure:"log"`
}

// CacheConfig selects where signatures are memoized between invocations.
type CacheConfig struct {
	Type  string `mapstructure:"type" validate:"required,oneof=memory sqlite postgres redis"`
	DSN   string `mapstructure:"dsn" validate:"required_unless=Type memory"`
	Table string `mapstructure:"table" validate:"required"`
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// Credentials returns the helix credentials held by the config.
func (c *Config) Credentials() helix.Credentials {
	return helix.Credentials{
		Site:        c.Site,
		Reseller:    c.Reseller,
		Company:     c.Company,
		Library:     c.Library,
		LicenseKey:  c.LicenseKey,
		Contributor: c.Contributor,
		Server:      c.Server,
	}
}

// Store returns the signature store connection settings.
func (c *Config) Store() database.Config {
	return database.Config{
		Type:  c.Cache.Type,
		DSN:   c.Cache.DSN,
		Table: c.Cache.Table,
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"license-key": "license_key",
	"cache-type":  "cache.type",
	"cache-dsn":   "cache.dsn",
	"cache-table": "cache.table",
	"timeout":     "http.timeout",
	"log-level":   "log.level",
	"log-format":  "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance. Empty
// defaults register the key so AutomaticEnv can fill it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("site", "")
	v.SetDefault("reseller", "")
	v.SetDefault("company", "")
	v.SetDefault("library", "")
	v.SetDefault("license_key", "")
	v.SetDefault("contributor", "")
	v.SetDefault("server", "")

	v.SetDefault("cache.type", database.TypeMemory)
	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.table", database.DefaultTable)

	v.SetDefault("http.timeout", helix.DefaultTimeout)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones);
//     files that do not exist are skipped
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	for _, cf := range configFiles {
		v.SetConfigFile(cf)
		if err := v.MergeInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			slog.Warn("error reading config file", "file", cf, "err", err)
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("HELIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Site = strings.TrimSuffix(cfg.Site, "/")

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
