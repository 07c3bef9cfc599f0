// Package config loads runtime configuration from the environment.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	envPrefix = "SYNTHLANG_WEB_"

	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultEnvironment  = "local"
	defaultVersion      = "0.3.0"
	defaultTemplatesDir = "templates"
	defaultPublicDir    = "public"
	defaultContentDir   = "content"
	defaultSessionTTL   = 30 * time.Minute
	defaultMaxTabs      = 4096
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	defaultLogLevel     = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	App     AppConfig
	Server  ServerConfig
	Paths   PathsConfig
	Session SessionConfig
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Environment string `validate:"oneof=local dev staging prod"`
	Dev         bool
	// Version is embedded in permalinks as a path segment.
	Version  string `validate:"required,excludesall=/?#"`
	LogLevel string
}

// Production reports whether the app runs in the prod environment.
func (a AppConfig) Production() bool { return a.Environment == "prod" }

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string        `validate:"required,numeric"`
	ReadTimeout  time.Duration `validate:"gt=0s"`
	WriteTimeout time.Duration `validate:"gt=0s"`
	IdleTimeout  time.Duration `validate:"gt=0s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return ":" + s.Port }

// PathsConfig locates on-disk templates, static assets, and markdown content.
type PathsConfig struct {
	Templates string `validate:"required"`
	Public    string `validate:"required"`
	Content   string `validate:"required"`
}

// SessionConfig controls the session cookie and the per-tab store.
type SessionConfig struct {
	SigningKey string
	TTL        time.Duration `validate:"gt=0s"`
	MaxTabs    int           `validate:"gt=0"`
}

// ValidationError is returned when configuration fields are missing or invalid.
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

// Option customises the loader.
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

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

var validate = validator.New()

// Load assembles the configuration from defaults, .env overrides, and
// environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnvValues[key]
		return value, ok
	}

	cfg := Config{
		App: AppConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, envPrefix+"ENV", defaultEnvironment)),
			Dev:         boolWithDefault(lookup, envPrefix+"DEV", false),
			Version:     stringWithDefault(lookup, envPrefix+"VERSION", defaultVersion),
			LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
		},
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, envPrefix+"PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, envPrefix+"READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, envPrefix+"WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, envPrefix+"IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Paths: PathsConfig{
			Templates: stringWithDefault(lookup, envPrefix+"TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, envPrefix+"PUBLIC_DIR", defaultPublicDir),
			Content:   stringWithDefault(lookup, envPrefix+"CONTENT_DIR", defaultContentDir),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, envPrefix+"SESSION_SIGNING_KEY", ""),
			TTL:        durationWithDefault(lookup, envPrefix+"SESSION_TTL", defaultSessionTTL),
			MaxTabs:    intWithDefault(lookup, envPrefix+"SESSION_MAX_TABS", defaultMaxTabs),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range verrs {
			invalid = append(invalid, strings.TrimPrefix(fe.Namespace(), "Config."))
		}
	}
	if cfg.App.Production() && strings.TrimSpace(cfg.Session.SigningKey) == "" {
		invalid = append(invalid, "Session.SigningKey")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
