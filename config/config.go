package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything resolved from the environment at process start.
// Nothing outside main reads os.Getenv.
type Config struct {
	Port             string
	DatabaseURL      string
	SQLitePath       string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAITimeout    time.Duration
	SlackBotToken    string
	SlackChannel     string
	CORSAllowOrigins []string
}

func Load() Config {
	return Config{
		Port:             getenv("PORT", "8000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getenv("SQLITE_PATH", "judge.db"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getenv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAITimeout:    time.Duration(getenvInt("OPENAI_TIMEOUT_SECONDS", 20)) * time.Second,
		SlackBotToken:    os.Getenv("SLACK_BOT_TOKEN"),
		SlackChannel:     os.Getenv("SLACK_CHANNEL"),
		CORSAllowOrigins: splitOrigins(getenv("CORS_ALLOW_ORIGINS", "*")),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
