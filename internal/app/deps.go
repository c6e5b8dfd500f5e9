package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"operia/internal/cache"
	"operia/internal/config"
	"operia/internal/integration"
	"operia/internal/llm"
	"operia/internal/logger"
	"operia/internal/queue"
	"operia/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  store.Store
	Queue  queue.Queue
	Cache  cache.Cache
	LLM    llm.Client
	Notion integration.NotionClient
	Slack  integration.SlackClient
	GitHub integration.GitHubClient
}

// Build loads env, config, and shared components for the named service.
func Build(service string) (Deps, error) {
	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, service)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	llmClient, err := NewLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Queue:  q,
		Cache:  buildCache(cfg, log),
		LLM:    llmClient,
		Notion: integration.NewNotionClient(cfg.NotionAPIKey, cfg.NotionDatabaseID, log),
		Slack:  integration.NewSlackClient(cfg.SlackBotToken, log),
		GitHub: integration.NewGitHubClient(cfg.GitHubToken, cfg.GitHubOrg, log),
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "memory":
		log.Info("using in-memory store")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: memory)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	case "none":
		// Async endpoints answer 503 when no queue is configured.
		log.Info("queue disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: nats, none)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("using no-op cache")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, falling back to no-op cache", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis cache", "addr", cfg.RedisAddr)
	return c
}

// NewLLM builds the configured chat-completion client. Exported so the CLI
// can construct one without the full dependency bundle.
func NewLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	timeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second

	switch cfg.LLMProvider {
	case "azure":
		client, err := llm.NewAzureClient(llm.AzureConfig{
			Endpoint:    cfg.AzureEndpoint,
			APIKey:      cfg.AzureAPIKey,
			Deployment:  cfg.AzureDeployment,
			APIVersion:  cfg.AzureAPIVersion,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Azure OpenAI client: %w", err)
		}
		log.Info("using Azure OpenAI client", "deployment", cfg.AzureDeployment)
		return client, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel), cfg.Temperature, cfg.MaxTokens, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: azure, openai)", cfg.LLMProvider)
	}
}
