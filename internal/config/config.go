// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the full runtime configuration.
type Config struct {
	App     AppConfig
	LLM     LLMConfig
	Pricing PricingConfig
	Session SessionConfig
}

// AppConfig holds server and process settings.
type AppConfig struct {
	Port              string
	Environment       string
	LogLevel          string
	LogFormat         string // "text" or "json"
	DocumentsDir      string // empty disables the shared folder
	UploadMaxMemoryMB int
}

// LLMConfig selects the completion provider and request parameters.
// A Temperature of 0 is sent as an explicit zero, not as the provider default.
type LLMConfig struct {
	Provider      string // "openai" or "ollama"
	OpenAIBaseURL string
	OpenAIAPIKey  string // optional default credential for new sessions
	OllamaBaseURL string
	Model         string
	Temperature   float32
	MaxTokens     int
}

// PricingConfig holds USD rates per 1000 tokens.
type PricingConfig struct {
	PromptPer1K     decimal.Decimal
	CompletionPer1K decimal.Decimal
}

// SessionConfig controls the session registry.
type SessionConfig struct {
	TTL time.Duration // zero keeps sessions until ended
}

// Load reads .env if present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("config: .env file not found, using system environment")
	}

	provider := getEnv("LLM_PROVIDER", "openai")

	return &Config{
		App: AppConfig{
			Port:              getEnv("APP_PORT", "8501"),
			Environment:       getEnv("GO_ENV", "development"),
			LogLevel:          getEnv("LOG_LEVEL", "info"),
			LogFormat:         getEnv("LOG_FORMAT", "text"),
			DocumentsDir:      getEnv("DOCUMENTS_DIR", ""),
			UploadMaxMemoryMB: getEnvAsInt("UPLOAD_MAX_MEMORY_MB", 32),
		},
		LLM: LLMConfig{
			Provider:      provider,
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:         getEnv("LLM_MODEL", DefaultModel(provider)),
			Temperature:   float32(getEnvAsFloat("LLM_TEMPERATURE", 0.3)),
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 800),
		},
		Pricing: PricingConfig{
			PromptPer1K:     getEnvAsDecimal("PRICE_PROMPT_PER_1K", "0.00015"),
			CompletionPer1K: getEnvAsDecimal("PRICE_COMPLETION_PER_1K", "0.0006"),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 0),
		},
	}
}

// DefaultModel is the model used when LLM_MODEL is not set.
func DefaultModel(provider string) string {
	if provider == "ollama" {
		return "llama3.2"
	}
	return "gpt-4o-mini"
}

// getEnv treats an empty variable as unset.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 32); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDecimal(key, fallback string) decimal.Decimal {
	if value, err := decimal.NewFromString(getEnv(key, "")); err == nil {
		return value
	}
	return decimal.RequireFromString(fallback)
}

// getEnvAsDuration accepts Go durations ("30m") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
