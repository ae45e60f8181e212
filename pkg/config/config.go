package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivupcn/restina-framework/pkg/hook"
	"github.com/ivupcn/restina-framework/pkg/logger"
	"github.com/ivupcn/restina-framework/pkg/sanitizer"
)

// Cache drivers accepted in app.cache.
const (
	CacheNone   = ""
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the file configuration of an application.
type Config struct {
	App    App                 `yaml:"app"`
	Cache  Cache               `yaml:"cache"`
	Redis  Redis               `yaml:"redis"`
	Server Server              `yaml:"server"`
	Log    Log                 `yaml:"log"`
	Hooks  hook.Config         `yaml:"hooks"`
	Sentry logger.SentryConfig `yaml:"sentry"`
}

type App struct {
	Name  string `yaml:"name"`
	Debug bool   `yaml:"debug"`
	// Cache selects the route cache driver; empty disables caching.
	Cache string `yaml:"cache"`
	// Sanitize is applied to every bound string input: "", "strip" or "safe".
	Sanitize string `yaml:"sanitize"`
	// RedactErrors hides fault messages in 500 responses outside debug mode.
	RedactErrors bool `yaml:"redact_errors"`
}

type Cache struct {
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

type Redis struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type Server struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys absent from a file.
func Default() Config {
	return Config{
		App: App{Name: "restina"},
		Cache: Cache{
			Dir: "runtime/cache",
			TTL: 24 * time.Hour,
		},
		Redis: Redis{
			URL:    "redis://127.0.0.1:6379/0",
			Prefix: "restina",
		},
		Server: Server{
			Address:         ":8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: Log{Level: "info", Format: "json"},
	}
}

// Parse decodes YAML over Default. ${VAR} and $VAR references are expanded
// from the environment before decoding. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Join(ErrParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate reports every invalid value, joined.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.App.Cache) {
	case CacheNone, CacheMemory, CacheRedis:
	case CacheFile:
		if c.Cache.Dir == "" {
			errs = append(errs, fmt.Errorf("%w: cache.dir is required for the file driver", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown app.cache driver %q", ErrInvalid, c.App.Cache))
	}
	if strings.EqualFold(c.App.Cache, CacheRedis) && c.Redis.URL == "" {
		errs = append(errs, fmt.Errorf("%w: redis.url is required for the redis driver", ErrInvalid))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid))
	}
	if _, err := sanitizer.ParseMode(c.App.Sanitize); err != nil {
		errs = append(errs, fmt.Errorf("%w: app.sanitize: %w", ErrInvalid, err))
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format))
	}
	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("%w: server.address is empty", ErrInvalid))
	}

	return errors.Join(errs...)
}

// CacheDriver returns app.cache lower-cased.
func (c Config) CacheDriver() string {
	return strings.ToLower(c.App.Cache)
}

// Logger builds the application logger from the log and sentry sections.
func (c Config) Logger(opts ...logger.Option) *slog.Logger {
	base := []logger.Option{
		logger.WithLevel(logger.ParseLevel(c.Log.Level)),
		logger.WithComponent(c.App.Name),
		logger.WithSentry(c.Sentry),
	}
	if c.Log.Format == "text" {
		base = append(base, logger.WithText())
	}
	return logger.New(append(base, opts...)...)
}
