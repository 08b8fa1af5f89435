package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything stockpulse needs to start a session.
type Config struct {
	APIURL         string        `validate:"required,url"`
	LogFile        string        `validate:"required"`
	LogLevel       string        `validate:"oneof=debug info warn warning error"`
	CountdownTick  time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gte=0"`
}

// Environment variables that override the config file.
const (
	EnvAPIURL   = "STOCKPULSE_API_URL"
	EnvLogLevel = "STOCKPULSE_LOG_LEVEL"
)

const (
	defaultConfigPath    = "~/.config/stockpulse/config.toml"
	defaultLogFile       = "~/.local/share/stockpulse/stockpulse.log"
	defaultAPIURL        = "https://stockpulse-api.onrender.com"
	defaultLogLevel      = "info"
	defaultCountdownTick = time.Second
)

// Overrides are command-line values applied last.
type Overrides struct {
	APIURL   string
	LogLevel string
}

var validate = validator.New()

// Load resolves configuration with precedence flag > environment (.env
// included) > config file > defaults. A missing config file is not an error.
func Load(path string, overrides Overrides) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	// RequestTimeout stays zero unless configured: the transport default applies.
	cfg := Config{
		APIURL:        defaultAPIURL,
		LogFile:       defaultLogFile,
		LogLevel:      defaultLogLevel,
		CountdownTick: defaultCountdownTick,
	}

	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	// A .env in the working directory is optional.
	_ = godotenv.Load()
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(overrides.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(overrides.LogLevel); v != "" {
		cfg.LogLevel = v
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFile = mustExpand(cfg.LogFile)

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		CountdownTick  string `toml:"countdown_tick"`
		RequestTimeout string `toml:"request_timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.CountdownTick); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: countdown_tick: %w", err)
		}
		cfg.CountdownTick = d
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
