package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"operia/internal/metrics"
)

// OpenAIClient calls the OpenAI Chat Completions API via the official SDK,
// for deployments running against api.openai.com instead of Azure.
type OpenAIClient struct {
	model       openai.ChatModel
	temperature float64
	maxTokens   int
	timeout     time.Duration
	client      *openai.Client
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel, temperature float64, maxTokens int, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	if timeout == 0 {
		timeout = defaultChatTimeout
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		client:      &cli,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	content, err := c.complete(ctx, system, prompt)
	metrics.ObserveLLMRequest("openai", StatusLabel(err), time.Since(start))
	return content, err
}

func (c *OpenAIClient) complete(ctx context.Context, system, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(system, prompt),
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ModelInfo() string {
	return "OpenAI " + string(c.model)
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
