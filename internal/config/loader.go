package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct populates struct fields from the env, envAlt, default and
// required tags, recursing into nested structs.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value, ok := lookup(envName, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// lookup returns the first non-empty value among the primary and alternate
// variable names.
func lookup(names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(value)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string
	check := func(failed bool, format string, args ...any) {
		if failed {
			errs = append(errs, fmt.Sprintf(format, args...))
		}
	}

	// Server
	check(c.Server.Port <= 0 || c.Server.Port > 65535, "SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	check(c.Server.ReadTimeout < 0, "SERVER_READ_TIMEOUT must be non-negative")
	check(c.Server.ShutdownTimeout <= 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")

	// Database (only when configured)
	if c.Database.Enabled() {
		check(c.Database.MaxConns <= 0, "DB_MAX_CONNS must be positive")
		check(c.Database.MinConns < 0, "DB_MIN_CONNS must be non-negative")
		check(c.Database.MaxConns < c.Database.MinConns,
			"DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)
	}

	// Upload
	check(c.Upload.MaxFileSize <= 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	check(c.Upload.MaxLineBytes < 95, "UPLOAD_MAX_LINE_BYTES (%d) must be at least 95", c.Upload.MaxLineBytes)
	check(c.Upload.MaxConcurrent <= 0, "UPLOAD_MAX_CONCURRENT must be positive")
	check(c.Upload.MaxWaitTime <= 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	check(c.Upload.Timeout <= 0, "UPLOAD_TIMEOUT must be positive")

	// Rate limiting
	check(c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0,
		"RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	check(c.Rate.Enabled && c.Rate.UploadLimit <= 0,
		"RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")

	// Security
	check(c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")

	// History
	check(c.History.MemoryCapacity <= 0, "HISTORY_MEMORY_CAPACITY must be positive")
	check(c.History.DefaultLimit <= 0, "HISTORY_DEFAULT_LIMIT must be positive")
	check(c.History.Retention < 0, "HISTORY_RETENTION must be non-negative")
	check(c.History.Retention > 0 && c.History.PruneInterval <= 0,
		"HISTORY_PRUNE_INTERVAL must be positive when HISTORY_RETENTION is set")

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	check(!validLevels[strings.ToLower(c.Logging.Level)],
		"LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	validFormats := map[string]bool{"text": true, "json": true, "pretty": true}
	check(!validFormats[strings.ToLower(c.Logging.Format)],
		"LOG_FORMAT (%q) must be one of: text, json, pretty", c.Logging.Format)

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	dbURL := "[NONE]"
	if c.Database.Enabled() {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d}, ", dbURL, c.Database.MaxConns)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d, ContentTypes: %v}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.AllowedContentTypes)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
