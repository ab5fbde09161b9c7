package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "LLM_PROVIDER", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
		"PRICE_PROMPT_PER_1K", "PRICE_COMPLETION_PER_1K", "SESSION_TTL", "DOCUMENTS_DIR", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8501", cfg.App.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, "", cfg.App.DocumentsDir)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.True(t, cfg.Pricing.PromptPer1K.Equal(decimal.RequireFromString("0.00015")))
	assert.True(t, cfg.Pricing.CompletionPer1K.Equal(decimal.RequireFromString("0.0006")))
	assert.Equal(t, time.Duration(0), cfg.Session.TTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "llama3.2")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_MAX_TOKENS", "256")
	t.Setenv("PRICE_PROMPT_PER_1K", "0.005")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DOCUMENTS_DIR", "/srv/docs")

	cfg := Load()

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.True(t, cfg.Pricing.PromptPer1K.Equal(decimal.RequireFromString("0.005")))
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "/srv/docs", cfg.App.DocumentsDir)
}

func TestGetEnvAsDuration_Seconds(t *testing.T) {
	t.Setenv("TEST_TTL", "90")

	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_TTL", 0))
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "lots")

	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))
}

func TestGetEnvAsDecimal_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_PRICE", "cheap")

	assert.True(t, getEnvAsDecimal("TEST_PRICE", "0.0006").Equal(decimal.RequireFromString("0.0006")))
}

func TestLoad_OllamaDefaultModel(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "")

	cfg := Load()

	assert.Equal(t, "llama3.2", cfg.LLM.Model)
}

func TestLoad_ExplicitModelWinsForOllama(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "qwen2.5")

	assert.Equal(t, "qwen2.5", Load().LLM.Model)
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0")

	assert.Equal(t, float32(0), Load().LLM.Temperature)
}
