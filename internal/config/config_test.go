package config

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := FromEnv(func(string) string { return "" })

		if cfg.Port != "18910" {
			t.Errorf("Port = %q, want 18910", cfg.Port)
		}
		if cfg.DBPath != "./brewlog.db" {
			t.Errorf("DBPath = %q", cfg.DBPath)
		}
		if cfg.DocumentsDir != "./documents" {
			t.Errorf("DocumentsDir = %q", cfg.DocumentsDir)
		}
		if cfg.LogLevel != zerolog.InfoLevel {
			t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.WheelRadius != 150 {
			t.Errorf("WheelRadius = %v, want 150", cfg.WheelRadius)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		env := map[string]string{
			"PORT":              "8080",
			"DB_PATH":           "/var/lib/brewlog.db",
			"DOCUMENTS_DIR":     "/var/lib/brewlog",
			"PLACEHOLDER_IMAGE": "static/none.png",
			"LOG_LEVEL":         "debug",
			"LOG_FORMAT":        "json",
			"WHEEL_RADIUS":      "200",
		}
		cfg := FromEnv(func(k string) string { return env[k] })

		if cfg.Port != "8080" || cfg.DBPath != "/var/lib/brewlog.db" || cfg.DocumentsDir != "/var/lib/brewlog" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.PlaceholderImage != "static/none.png" {
			t.Errorf("PlaceholderImage = %q", cfg.PlaceholderImage)
		}
		if cfg.LogLevel != zerolog.DebugLevel || cfg.LogFormat != "json" {
			t.Errorf("log config = %v/%s", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.WheelRadius != 200 {
			t.Errorf("WheelRadius = %v, want 200", cfg.WheelRadius)
		}
	})

	t.Run("malformed values fall back", func(t *testing.T) {
		env := map[string]string{"LOG_LEVEL": "loud", "WHEEL_RADIUS": "-5"}
		cfg := FromEnv(func(k string) string { return env[k] })
		if cfg.LogLevel != zerolog.InfoLevel {
			t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.WheelRadius != 150 {
			t.Errorf("WheelRadius = %v, want 150", cfg.WheelRadius)
		}
	})
}
