// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Stats  StatsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the history file and song catalog.
	BasePath string
	// WatchHistory enables the file watcher that refreshes summaries when
	// the history file changes on disk.
	WatchHistory bool
}

// StatsConfig holds aggregation configuration.
type StatsConfig struct {
	// RetentionDays is how long playback events are kept (default: 90).
	RetentionDays int
	// MaxEventDuration caps a single event's duration (default: 4h).
	MaxEventDuration time.Duration
	// SessionGap is the idle gap that splits listening sessions (default: 30m).
	SessionGap time.Duration
	// Timezone is the IANA zone used for calendar math (default: Local).
	Timezone string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for playback data storage")
	watchHistory := flag.String("watch-history", "", "Watch the history file for external changes (default: true)")
	retentionDays := flag.String("retention-days", "", "Days of playback history to keep (default: 90)")
	maxEventDuration := flag.String("max-event-duration", "", "Cap on a single event's duration (default: 4h)")
	sessionGap := flag.String("session-gap", "", "Idle gap that splits listening sessions (default: 30m)")
	timezone := flag.String("timezone", "", "IANA timezone for calendar math (default: local)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath:     getConfigValue(*dataPath, "DATA_PATH", ""),
			WatchHistory: getBoolConfigValue(*watchHistory, "WATCH_HISTORY", true),
		},
		Stats: StatsConfig{
			RetentionDays: getIntConfigValue(*retentionDays, "RETENTION_DAYS", 90),
			Timezone:      getConfigValue(*timezone, "TIMEZONE", ""),
		},
	}

	maxDurationStr := getConfigValue(*maxEventDuration, "MAX_EVENT_DURATION", "4h")
	maxDuration, err := time.ParseDuration(maxDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid max event duration %q: %w", maxDurationStr, err)
	}
	cfg.Stats.MaxEventDuration = maxDuration

	sessionGapStr := getConfigValue(*sessionGap, "SESSION_GAP", "30m")
	gap, err := time.ParseDuration(sessionGapStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session gap %q: %w", sessionGapStr, err)
	}
	cfg.Stats.SessionGap = gap

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Stats.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be positive, got %d", c.Stats.RetentionDays)
	}
	if c.Stats.MaxEventDuration <= 0 {
		return fmt.Errorf("max event duration must be positive, got %s", c.Stats.MaxEventDuration)
	}
	if c.Stats.SessionGap <= 0 {
		return fmt.Errorf("session gap must be positive, got %s", c.Stats.SessionGap)
	}

	if c.Stats.Timezone != "" {
		if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Stats.Timezone, err)
		}
	}

	return nil
}

// Location resolves the configured timezone, falling back to the system
// local zone when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Stats.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Stats.Timezone)
}

// HistoryPath is the JSON history file location under the data directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Data.BasePath, "playback_history.json")
}

// CatalogPath is the song catalog database location under the data directory.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Data.BasePath, "catalog")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute, defaulting to
// ~/RhythmStats/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "RhythmStats", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
