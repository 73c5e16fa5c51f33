package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultEnvFile = ".env"
	envPrefix      = "ROUTINE_"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Catalog   CatalogConfig   `envPrefix:"CATALOG_"`
	Assistant AssistantConfig `envPrefix:"ASSISTANT_"`
	Storage   StorageConfig   `envPrefix:"STORAGE_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	Workspace WorkspaceConfig `envPrefix:"WORKSPACE_"`
	Log       LogConfig       `envPrefix:"LOG_"`

	// Dev reparses templates on every request.
	Dev       bool   `env:"DEV"`
	PublicDir string `env:"PUBLIC_DIR" envDefault:"public"`
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"75s"`
}

// CatalogConfig points at the read-only product document.
type CatalogConfig struct {
	// Source is a filesystem path or an http(s) URL.
	Source string `env:"SOURCE" envDefault:"products.json"`
}

// AssistantConfig defines the chat completion endpoint.
type AssistantConfig struct {
	Endpoint  string        `env:"ENDPOINT"`
	Model     string        `env:"MODEL"`
	WebSearch bool          `env:"WEB_SEARCH"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"45s"`
}

// StorageConfig selects the durable store for favorites.
type StorageConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/routine.db"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"routine:"`
}

// SessionConfig controls the visitor cookie.
type SessionConfig struct {
	SigningKey string        `env:"SIGNING_KEY"`
	Secure     bool          `env:"SECURE"`
	MaxAge     time.Duration `env:"MAX_AGE" envDefault:"8760h"`
}

// WorkspaceConfig controls how long idle visitor state stays in memory.
type WorkspaceConfig struct {
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"2h"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
	// File enables a rotated JSON log file next to stdout.
	File string `env:"FILE"`
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and explicit maps (in increasing precedence).
func Load(opts ...Option) (Config, error) {
	values, err := EnvironmentValues(opts...)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: values,
		Prefix:      envPrefix,
	}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	normalize(&cfg)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvironmentValues returns the effective key/value environment map after applying the same precedence
// rules as Load (dotenv < OS env < explicit env map).
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	merge := func(source map[string]string) {
		for key, value := range source {
			values[key] = value
		}
	}

	merge(dotEnvValues)
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	merge(options.envMap)

	return values, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func normalize(cfg *Config) {
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	cfg.Catalog.Source = strings.TrimSpace(cfg.Catalog.Source)
	cfg.Assistant.Endpoint = strings.TrimSpace(cfg.Assistant.Endpoint)
	cfg.Assistant.Model = strings.TrimSpace(cfg.Assistant.Model)
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Addr == "" {
		missing = append(missing, "Server.Addr")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Server.RequestTimeout <= 0 {
		missing = append(missing, "Server.RequestTimeout")
	}
	if cfg.Catalog.Source == "" {
		missing = append(missing, "Catalog.Source")
	}
	if cfg.Assistant.Timeout <= 0 {
		missing = append(missing, "Assistant.Timeout")
	}
	switch cfg.Storage.Driver {
	case StorageDriverSQLite:
		if strings.TrimSpace(cfg.Storage.SQLitePath) == "" {
			missing = append(missing, "Storage.SQLitePath")
		}
	case StorageDriverRedis:
		if strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
			missing = append(missing, "Storage.RedisAddr")
		}
	case StorageDriverMemory:
	default:
		missing = append(missing, "Storage.Driver")
	}
	if cfg.Session.MaxAge <= 0 {
		missing = append(missing, "Session.MaxAge")
	}
	if cfg.Workspace.IdleTTL <= 0 {
		missing = append(missing, "Workspace.IdleTTL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}
