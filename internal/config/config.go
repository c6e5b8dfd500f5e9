package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for all binaries. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM provider: "azure" (Azure OpenAI deployment) or "openai" (api.openai.com)
	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"azure"`
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey     string `env:"AZURE_OPENAI_API_KEY"`
	AzureDeployment string `env:"AZURE_OPENAI_DEPLOYMENT" envDefault:"gpt-4o"`
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-05-01-preview"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	LLMModel        string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// Pipeline knobs
	Temperature       float64 `env:"AGENT_TEMPERATURE" envDefault:"0.3"`
	MaxTokens         int     `env:"AGENT_MAX_TOKENS" envDefault:"4000"`
	LLMTimeoutSeconds int     `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	MemoryWindowDays  int     `env:"AGENT_MEMORY_WINDOW_DAYS" envDefault:"7"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory"` // "memory" (reference in-process store)

	// Queue: "nats" for async extraction, "none" to run gateway-only
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"`
	QueueURL      string `env:"QUEUE_URL"`

	// Cache: recent-context cache, disabled when REDIS_ADDR is empty
	RedisAddr              string `env:"REDIS_ADDR"`
	RedisPassword          string `env:"REDIS_PASSWORD"`
	ContextCacheTTLSeconds int    `env:"CONTEXT_CACHE_TTL_SECONDS" envDefault:"300"`

	// Integrations (stubs refuse to run without credentials)
	NotionAPIKey     string `env:"INTEGRATION_NOTION_API_KEY"`
	NotionDatabaseID string `env:"INTEGRATION_NOTION_DATABASE_ID"`
	SlackBotToken    string `env:"INTEGRATION_SLACK_BOT_TOKEN"`
	GitHubToken      string `env:"INTEGRATION_GITHUB_TOKEN"`
	GitHubOrg        string `env:"INTEGRATION_GITHUB_ORG"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
