// Package config loads relay daemon configuration from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/dannysarco/llm-token-optimizer/internal/platform"
)

// Config holds all runtime configuration for the relay daemon.
type Config struct {
	Port    string
	WorkDir string
	DBPath  string

	AnthropicAPIKey string
	Model           string
	MaxOutputTokens int

	// AccessKey guards the /api routes when non-empty.
	AccessKey string

	DailyBudgetUSD float64

	TelegramToken  string
	TelegramChatID int64

	WebhookURL string
}

// Load reads environment variables and returns a Config.
// Uses sensible defaults for optional fields. ANTHROPIC_API_KEY is the only
// required field; the caller decides whether a missing key is fatal so tests
// can build configs without an environment.
func Load() *Config {
	workDir := getEnv("WORK_DIR", platform.DefaultWorkDir())

	chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)

	return &Config{
		Port:    getEnv("PORT", "3000"),
		WorkDir: workDir,
		DBPath:  getEnv("DB_PATH", filepath.Join(workDir, "optimizer.db")),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 1024),

		AccessKey: os.Getenv("ACCESS_KEY"),

		DailyBudgetUSD: getEnvFloat("DAILY_BUDGET_USD", 5.0),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chatID,

		WebhookURL: os.Getenv("WEBHOOK_URL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
