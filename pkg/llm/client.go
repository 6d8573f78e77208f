// Package llm wraps an OpenAI-compatible chat completion API as a text oracle
// and provides lenient json extraction for its responses.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/umputun/feedpulse/pkg/config"
)

// default system prompt for feedback analysis
const defaultSystemPrompt = `You are an analyst of customer feedback for a B2B SaaS product.
You group comments into short, stable issue labels of 2-5 words, never full sentences,
and never include ticket numbers, order numbers or other identifiers in labels.
When asked for JSON, respond with JSON only, without explanations.`

// Client sends prompts to the llm and returns the text of the first choice
type Client struct {
	client    *openai.Client
	config    config.LLMConfig
	limiter   *rate.Limiter
	systemMsg string
}

// NewClient creates a new llm oracle client
func NewClient(cfg config.LLMConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	// use custom system prompt if provided, otherwise use default
	systemMsg := cfg.SystemPrompt
	if systemMsg == "" {
		systemMsg = defaultSystemPrompt
	}

	// requests per minute spread evenly, zero means no limit
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.RequestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		limiter:   limiter,
		systemMsg: systemMsg,
	}
}

// Infer sends prompt to the llm. The call is bounded by the configured timeout,
// failures are returned as is and never retried.
func (c *Client) Infer(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit wait: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.systemMsg,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from llm")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from llm")
	}
	return content, nil
}
