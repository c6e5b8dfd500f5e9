package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"operia/internal/metrics"
)

const (
	defaultAzureAPIVersion = "2024-05-01-preview"
	defaultTemperature     = 0.3
	defaultMaxTokens       = 4000
	defaultChatTimeout     = 60 * time.Second
)

// AzureConfig carries the settings for one Azure OpenAI deployment.
type AzureConfig struct {
	Endpoint    string
	APIKey      string
	Deployment  string
	APIVersion  string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// AzureClient calls an Azure OpenAI chat-completions deployment directly
// over HTTPS. Certificate verification is always on; there is no insecure
// mode. Each Complete call is a single attempt.
type AzureClient struct {
	cfg        AzureConfig
	httpClient *http.Client
}

var _ Client = (*AzureClient)(nil)

// NewAzureClient validates the deployment settings and builds a client.
func NewAzureClient(cfg AzureConfig) (*AzureClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure endpoint required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("azure api key required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("azure deployment required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAzureAPIVersion
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultChatTimeout
	}
	return &AzureClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *AzureClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	content, err := c.complete(ctx, system, prompt)
	metrics.ObserveLLMRequest("azure", StatusLabel(err), time.Since(start))
	return content, err
}

func (c *AzureClient) complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("azure openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("azure openai: no choices returned")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *AzureClient) ModelInfo() string {
	return "Azure OpenAI " + c.cfg.Deployment
}
