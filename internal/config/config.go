package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/notecraft/notecraft/internal/gemini"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr           = ":8888"
	DefaultMaxUploadBytes = 10 << 20
	DefaultSessionTTL     = 24 * time.Hour
	DefaultRequestTimeout = 180 * time.Second
)

// User is a seed account for local use
type User struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Models struct {
	Pro   string `yaml:"pro"`
	Image string `yaml:"image"`
	Flash string `yaml:"flash"`
}

// Config is the settings file merged with the environment
type Config struct {
	GeminiAPIKey      string        `yaml:"gemini_api_key"`
	Models            Models        `yaml:"models"`
	CopywritingModel  string        `yaml:"copywriting_model"`
	Addr              string        `yaml:"addr"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	LogLevel          string        `yaml:"log_level"`
	StrictCredentials bool          `yaml:"strict_credentials"`
	Users             []User        `yaml:"users"`
}

func Default() Config {
	return Config{
		Models: Models{
			Pro:   gemini.DefaultProModel,
			Image: gemini.DefaultImageModel,
			Flash: gemini.DefaultFlashModel,
		},
		CopywritingModel: gemini.RolePro,
		Addr:             DefaultAddr,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		SessionTTL:       DefaultSessionTTL,
		RequestTimeout:   DefaultRequestTimeout,
		LogLevel:         "info",
	}
}

// Load reads the optional settings file at path, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Models.Pro, "GEMINI_PRO_MODEL")
	setString(&c.Models.Image, "GEMINI_IMAGE_MODEL")
	setString(&c.Models.Flash, "GEMINI_FLASH_MODEL")
	setString(&c.CopywritingModel, "COPYWRITING_MODEL")
	setString(&c.Addr, "NOTECRAFT_ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")

	if value := env("MAX_UPLOAD_BYTES"); value != "" {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", value, err)
		}
		c.MaxUploadBytes = n
	}
	if err := setDuration(&c.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if value := env("STRICT_CREDENTIALS"); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid STRICT_CREDENTIALS %q: %w", value, err)
		}
		c.StrictCredentials = b
	}
	return nil
}

// Validate rejects settings the server cannot run with. A missing API key
// is reported by the model factory instead.
func (c Config) Validate() error {
	var errs []error

	switch c.CopywritingModel {
	case gemini.RolePro, gemini.RoleFlash:
	default:
		errs = append(errs, fmt.Errorf("copywriting_model must be %q or %q, got %q", gemini.RolePro, gemini.RoleFlash, c.CopywritingModel))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("session_ttl must not be negative"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	for i, u := range c.Users {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d] needs an email and a password", i))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel maps log_level to a slog level
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if value := env(key); value != "" {
		*dst = value
	}
}

// setDuration accepts Go durations ("90s") or whole seconds ("90")
func setDuration(dst *time.Duration, key string) error {
	value := env(key)
	if value == "" {
		return nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q", key, value)
	}
	*dst = time.Duration(secs) * time.Second
	return nil
}
