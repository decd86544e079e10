package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey    string
	GeminiModel     string
	DataDir         string
	LeaderboardURL  string
	Port            string
	LogLevel        zerolog.Level
	FeedbackTimeout time.Duration
	GameConfig      string
	ScenarioFile    string
}

// LoadConfig loads the configuration from environment variables. A missing
// GEMINI_API_KEY is not an error: the mentor then answers with its fallbacks.
func LoadConfig() (*Config, error) {
	c := &Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		DataDir:        getenv("DATA_DIR", ".cyberdefenders"),
		LeaderboardURL: os.Getenv("LEADERBOARD_URL"),
		Port:           getenv("PORT", "8080"),
		GameConfig:     os.Getenv("GAME_CONFIG"),
		ScenarioFile:   os.Getenv("SCENARIO_FILE"),
	}

	level, err := zerolog.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	c.LogLevel = level

	c.FeedbackTimeout, err = time.ParseDuration(getenv("FEEDBACK_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("FEEDBACK_TIMEOUT: %w", err)
	}
	if c.FeedbackTimeout <= 0 {
		return nil, fmt.Errorf("FEEDBACK_TIMEOUT must be positive, got %s", c.FeedbackTimeout)
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	return c, nil
}

// LeaderboardPath is where the file-backed leaderboard lives.
func (c *Config) LeaderboardPath() string {
	return filepath.Join(c.DataDir, "leaderboard.yaml")
}

// LogPath is the log file of the terminal client, whose stdout belongs to the
// UI.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "game.log")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
