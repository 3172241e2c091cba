package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	DefaultJWTSecret = "dev_secret_change_me"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Mongo     MongoConfig     `koanf:"mongo"`
	Store     StoreConfig     `koanf:"store"`
	Security  SecurityConfig  `koanf:"security"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	Env             string        `koanf:"env"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	RetryDelay     time.Duration `koanf:"retry_delay"`
}

type StoreConfig struct {
	Driver string `koanf:"driver"`
}

type SecurityConfig struct {
	JWTSecret  string        `koanf:"jwt_secret"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`
}

type TMDBConfig struct {
	APIKey  string        `koanf:"api_key"`
	Bearer  string        `koanf:"bearer"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Disabled bool          `koanf:"disabled"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ConfigPathEnvVar points at an optional YAML file layered between defaults and env.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3333",
			Env:             "development",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Mongo: MongoConfig{
			URI:            "mongodb://127.0.0.1:27017/tcc-mamahalls",
			Database:       "",
			ConnectTimeout: 10 * time.Second,
			RetryDelay:     5 * time.Second,
		},
		Store: StoreConfig{Driver: StoreMongo},
		Security: SecurityConfig{
			JWTSecret:  DefaultJWTSecret,
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
		},
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
			Timeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envMappings maps flat environment names onto nested config keys.
var envMappings = map[string]string{
	"port":                  "server.port",
	"go_env":                "server.env",
	"shutdown_timeout":      "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"mongo_uri":             "mongo.uri",
	"db_name":               "mongo.database",
	"mongo_connect_timeout": "mongo.connect_timeout",
	"mongo_retry_delay":     "mongo.retry_delay",
	"store_driver":          "store.driver",
	"jwt_secret":            "security.jwt_secret",
	"token_ttl":             "security.token_ttl",
	"bcrypt_cost":           "security.bcrypt_cost",
	"tmdb_api_key":          "tmdb.api_key",
	"tmdb_bearer":           "tmdb.bearer",
	"tmdb_base_url":         "tmdb.base_url",
	"tmdb_timeout":          "tmdb.timeout",
	"rate_limit_requests":   "rate_limit.requests",
	"rate_limit_window":     "rate_limit.window",
	"rate_limit_disabled":   "rate_limit.disabled",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

// LoadConfig loads .env files, then layers defaults, an optional YAML file and
// the environment (highest priority).
func LoadConfig() (*Config, error) {
	loadEnvFiles()
	return load()
}

// loadEnvFiles reads .env and environments/.env.<GO_ENV>. Both are optional;
// variables already set in the process win.
func loadEnvFiles() {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}
	for _, f := range []string{".env", filepath.Join("environments", fmt.Sprintf(".env.%s", goEnv))} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	if v, ok := k.Get("server.cors_origins").(string); ok {
		if err := k.Set("server.cors_origins", splitList(v)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransform returns "" for variables this app does not own so koanf skips them.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %q or %q, got %q", StoreMongo, StoreMemory, c.Store.Driver))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, errors.New("security.token_ttl must be positive"))
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Mongo.RetryDelay <= 0 || c.Mongo.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("mongo timeouts must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit requests and window must be positive"))
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, errors.New("tmdb.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Warnings lists non-fatal problems worth logging at startup.
func (c *Config) Warnings() []string {
	var w []string
	if c.Security.JWTSecret == DefaultJWTSecret {
		w = append(w, "JWT_SECRET not set, using the development secret")
	}
	if c.Store.Driver == StoreMongo && os.Getenv("MONGO_URI") == "" && !strings.Contains(c.Mongo.URI, "@") {
		w = append(w, "MONGO_URI not set, using the default local URI")
	}
	if strings.ContainsAny(c.Mongo.URI, "<>") {
		w = append(w, "MONGO_URI appears to contain placeholders")
	}
	if c.TMDB.APIKey == "" && c.TMDB.Bearer == "" {
		w = append(w, "TMDB_API_KEY/TMDB_BEARER not set, catalog gateway will fail")
	}
	return w
}

// DatabaseName prefers the explicit name, then the path segment of the URI.
func (m MongoConfig) DatabaseName() string {
	if m.Database != "" {
		return m.Database
	}
	uri := m.URI
	if i := strings.Index(uri, "://"); i >= 0 {
		uri = uri[i+3:]
	}
	if i := strings.Index(uri, "/"); i >= 0 {
		name := uri[i+1:]
		if j := strings.IndexAny(name, "?"); j >= 0 {
			name = name[:j]
		}
		if name != "" {
			return name
		}
	}
	return "cinelist"
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}
