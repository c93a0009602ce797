package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "SQLITE_PATH", "OPENAI_API_KEY", "OPENAI_MODEL",
		"OPENAI_TIMEOUT_SECONDS", "SLACK_BOT_TOKEN", "SLACK_CHANNEL", "CORS_ALLOW_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "judge.db", cfg.SQLitePath)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 20*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "5")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
}

func TestLoadIgnoresInvalidTimeout(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "banana")
	assert.Equal(t, 20*time.Second, Load().OpenAITimeout)

	t.Setenv("OPENAI_TIMEOUT_SECONDS", "-3")
	assert.Equal(t, 20*time.Second, Load().OpenAITimeout)
}
