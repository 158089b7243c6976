package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JunjaK/nihongo-vocabook-sub001/internal/logger"
)

type Config struct {
	// Vision-model provider configuration
	VisionProvider  string // openai, anthropic, gemini
	VisionModel     string // empty selects the provider default
	VisionTimeout   int    // seconds
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// Extraction defaults
	Mode   string // ocr, llm, hybrid
	Locale string // meaning language for the LLM path (ko, en)

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		VisionProvider:  getEnv("VISION_PROVIDER", "openai"),
		VisionModel:     getEnv("VISION_MODEL", ""),
		VisionTimeout:   getIntEnv("VISION_TIMEOUT_SECONDS", 60),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		Mode:            getEnv("EXTRACT_MODE", "ocr"),
		Locale:          getEnv("MEANING_LOCALE", "en"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:       getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.VisionProvider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("VISION_PROVIDER must be openai, anthropic or gemini, got %q", c.VisionProvider)
	}
	switch c.Mode {
	case "ocr", "llm", "hybrid":
	default:
		return fmt.Errorf("EXTRACT_MODE must be ocr, llm or hybrid, got %q", c.Mode)
	}
	if c.VisionTimeout <= 0 {
		return fmt.Errorf("VISION_TIMEOUT_SECONDS must be positive, got %d", c.VisionTimeout)
	}
	return nil
}

// VisionAPIKey returns the API key for the configured provider.
func (c *Config) VisionAPIKey() string {
	switch c.VisionProvider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
