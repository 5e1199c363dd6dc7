// Package config loads the exporter configuration from YAML, the process
// environment and optional .env files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	merrors "git.home.luguber.info/inful/eventmetrics/internal/errors"
)

// Config is the root configuration document.
type Config struct {
	Metrics   MetricsConfig   `yaml:"metrics"`
	HTTP      HTTPConfig      `yaml:"http"`
	NATS      NATSConfig      `yaml:"nats"`
	Directory DirectoryConfig `yaml:"directory"`
	Push      PushConfig      `yaml:"push"`
	Retry     RetryConfig     `yaml:"retry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MetricsConfig controls naming and which event types get specialized series.
type MetricsConfig struct {
	Namespace         string    `yaml:"namespace"`
	Specialized       PolicySet `yaml:"specialized"`
	DefaultProvider   string    `yaml:"default_provider"`
	RuntimeCollectors bool      `yaml:"runtime_collectors"`
}

// HTTPConfig configures the scrape and ingestion endpoint.
type HTTPConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// NATSConfig configures the JetStream event consumer.
type NATSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	URL          string `yaml:"url"`
	Stream       string `yaml:"stream"`
	UserSubject  string `yaml:"user_subject"`
	AdminSubject string `yaml:"admin_subject"`
	Durable      string `yaml:"durable"`
}

// DirectoryConfig selects the realm/client/session lookup backend.
type DirectoryConfig struct {
	Type          DirectoryType `yaml:"type"`
	File          string        `yaml:"file"`
	Watch         bool          `yaml:"watch"`
	Driver        string        `yaml:"driver"`
	DSN           string        `yaml:"dsn"`
	CacheSize     int           `yaml:"cache_size"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	LookupTimeout time.Duration `yaml:"lookup_timeout"`
}

// PushConfig configures the optional push gateway. Address, username and
// password are usually supplied through the environment.
type PushConfig struct {
	Address  string        `yaml:"address"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Job      string        `yaml:"job"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Enabled reports whether a gateway address is configured.
func (p PushConfig) Enabled() bool { return p.Address != "" }

// RetryConfig controls how startup connections to the broker and the
// directory database are retried. MaxRetries of zero selects the default;
// a negative value disables retries.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads the configuration file at path. An empty path skips the file
// and yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file could not be loaded: %v\n", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, merrors.ConfigNotFound(path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, merrors.Wrap(err, merrors.CategoryFileSystem, merrors.SeverityFatal, "failed to read config file").
				WithContext("path", path)
		}
		expanded := os.Expand(string(data), func(key string) string {
			v, _ := lookup(key)
			return v
		})
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, merrors.ConfigInvalid(path, err)
		}
	}

	applyEnv(&cfg, lookup)

	if err := Normalize(&cfg); err != nil {
		return nil, merrors.ConfigInvalid(path, err)
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, merrors.ConfigInvalid(path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return merrors.New(merrors.CategoryValidation, merrors.SeverityError,
			"configuration file already exists (use --force to overwrite)").WithContext("path", path)
	}
	example := Config{
		Metrics: MetricsConfig{
			Namespace:       "keycloak",
			Specialized:     PolicySetFull,
			DefaultProvider: "keycloak",
		},
		HTTP: HTTPConfig{Addr: ":9464", MetricsPath: "/metrics"},
		NATS: NATSConfig{
			URL:          "nats://127.0.0.1:4222",
			Stream:       "KEYCLOAK_EVENTS",
			UserSubject:  "keycloak.events.user",
			AdminSubject: "keycloak.events.admin",
			Durable:      "eventmetrics",
		},
		Directory: DirectoryConfig{
			Type:          DirectorySQL,
			Driver:        "pgx",
			DSN:           "${KEYCLOAK_DB_DSN}",
			CacheSize:     1024,
			CacheTTL:      time.Minute,
			LookupTimeout: 2 * time.Second,
		},
		Push: PushConfig{
			Job:      "keycloak",
			Interval: 30 * time.Second,
			Timeout:  10 * time.Second,
		},
		Retry: RetryConfig{
			Mode:       RetryBackoffExponential,
			Initial:    time.Second,
			Max:        30 * time.Second,
			MaxRetries: 5,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return merrors.InternalError("failed to marshal example configuration", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return merrors.Wrap(err, merrors.CategoryFileSystem, merrors.SeverityFatal, "failed to write configuration").
			WithContext("path", path)
	}
	return nil
}
