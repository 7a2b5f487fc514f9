package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port             string
	DBPath           string
	DocumentsDir     string
	PlaceholderImage string
	LogLevel         zerolog.Level
	// LogFormat is "console" for human-readable output or "json"
	LogFormat   string
	WheelRadius float64
}

// Load reads an optional .env file, then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults for
// missing or malformed values.
func FromEnv(getenv func(string) string) Config {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	level, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	radius, err := strconv.ParseFloat(get("WHEEL_RADIUS", "150"), 64)
	if err != nil || radius <= 0 {
		radius = 150
	}

	return Config{
		Port:             get("PORT", "18910"),
		DBPath:           get("DB_PATH", "./brewlog.db"),
		DocumentsDir:     get("DOCUMENTS_DIR", "./documents"),
		PlaceholderImage: get("PLACEHOLDER_IMAGE", "assets/placeholder.jpg"),
		LogLevel:         level,
		LogFormat:        get("LOG_FORMAT", "console"),
		WheelRadius:      radius,
	}
}

// Logger builds the root logger for the configured level and format.
func (c Config) Logger() zerolog.Logger {
	var logger zerolog.Logger
	if c.LogFormat == "json" {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger.Level(c.LogLevel).With().Timestamp().Logger()
}
