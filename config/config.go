// Package config loads canvaspipe settings from the environment.
// Values from .env.local and .env are applied first without overriding
// variables already set in the process environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read by Load, most specific first.
var DefaultEnvFiles = []string{".env.local", ".env"}

// ErrMissingCredentials is returned when a command needs Canvas access but
// CANVAS_BASE_URL or CANVAS_API_TOKEN is unset.
var ErrMissingCredentials = errors.New("missing required environment variables CANVAS_BASE_URL and CANVAS_API_TOKEN")

// Config holds every setting.
type Config struct {
	BaseURL     string         `env:"CANVAS_BASE_URL"`
	Token       string         `env:"CANVAS_API_TOKEN"`
	CourseIDs   []string       `env:"SYNC_COURSE_IDS" envSeparator:","`
	Mappings    CourseMappings `env:"COURSE_MAPPINGS" envDefault:"[]"`
	ContentRoot string         `env:"CONTENT_ROOT" envDefault:"."`
	Timeout     time.Duration  `env:"CANVAS_TIMEOUT" envDefault:"30s"`
	Concurrency int            `env:"SYNC_CONCURRENCY" envDefault:"2"`
	LogLevel    string         `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string         `env:"LOG_FORMAT" envDefault:"text"` // text | json

	// Hosts recognised as meeting links in office-hours blocks; empty keeps
	// the extractor defaults.
	MeetingProviders []string `env:"MEETING_PROVIDERS" envSeparator:","`
}

// CourseMapping places a Canvas course in the content store.
type CourseMapping struct {
	CanvasID   string `json:"canvasId"`
	Term       string `json:"term"`       // e.g. spring-2025
	CourseCode string `json:"courseCode"` // e.g. mth-122
}

// CourseMappings is parsed from a JSON array.
type CourseMappings []CourseMapping

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CourseMappings) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*m = nil
		return nil
	}
	var out []CourseMapping
	if err := json.Unmarshal(text, &out); err != nil {
		return fmt.Errorf("COURSE_MAPPINGS must be a JSON array: %w", err)
	}
	*m = out
	return nil
}

// Load reads DefaultEnvFiles and parses the environment.
func Load() (Config, error) {
	return LoadFiles(DefaultEnvFiles...)
}

// LoadFiles applies the given dotenv files (missing files are skipped) and
// parses the environment.
func LoadFiles(files ...string) (Config, error) {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	ids := cfg.CourseIDs[:0]
	for _, id := range cfg.CourseIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	cfg.CourseIDs = ids
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return cfg, nil
}

// RequireCanvas returns ErrMissingCredentials unless both Canvas settings are present.
func (c Config) RequireCanvas() error {
	if c.BaseURL == "" || c.Token == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Mapping finds the mapping for a Canvas course id.
func (c Config) Mapping(canvasID string) (CourseMapping, bool) {
	for _, m := range c.Mappings {
		if m.CanvasID == canvasID {
			return m, true
		}
	}
	return CourseMapping{}, false
}

// NewLogger builds the process logger from LogLevel and LogFormat.
// An unknown level falls back to info.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
