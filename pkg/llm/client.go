package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	defaultModel = "gpt-4o-mini"
	apiKeyEnv    = "OPENAI_API_KEY"
)

// Client issues chat completions against an OpenAI-compatible endpoint
type Client struct {
	api openai.Client
	cfg types.LLMConfig
}

// NewClient creates an LLM client. The SDK's automatic retries are turned off:
// one request per message, failures are handled by the caller.
func NewClient(cfg types.LLMConfig, opts ...option.RequestOption) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnv)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		api: openai.NewClient(reqOpts...),
		cfg: cfg,
	}
}

// Validate checks the API key with a model listing call
func (c *Client) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return fmt.Errorf("%w: api key is empty", types.ErrInvalidLLMCredentials)
	}

	if _, err := c.api.Models.List(ctx); err != nil {
		log.Warn().Err(err).Interface("config", c.cfg.Redact()).Msg("llm credential check failed")
		return fmt.Errorf("%w: %v", types.ErrInvalidLLMCredentials, err)
	}
	return nil
}

// Complete sends prompt as a single user message and returns the first choice's text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.cfg.Model),
		Temperature: openai.Float(c.cfg.Temperature),
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", types.ErrEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}
