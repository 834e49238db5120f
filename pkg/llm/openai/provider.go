package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	defaultModel = "llama-3.1-70b-versatile"
)

// Config holds client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Provider talks to any OpenAI-compatible chat completion API (Groq by default).
type Provider struct {
	api         *openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

var _ llm.LLMProvider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, failure.Provider("llm.new", errors.New("llm: API key is required"))
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	temp := cfg.Temperature
	if temp < 0 {
		temp = 0
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	openaiCfg.BaseURL = baseURL

	return &Provider{
		api:         openai.NewClientWithConfig(openaiCfg),
		model:       model,
		temperature: temp,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}
	for _, o := range options {
		o(opts)
	}

	messages := make([]openai.ChatCompletionMessage, len(history))
	for i, m := range history {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.api.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", failure.Remote("llm.chat", errors.New("llm: empty response"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return failure.FromHTTPStatus("llm.chat", apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return failure.FromHTTPStatus("llm.chat", reqErr.HTTPStatusCode, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return failure.Transient("llm.chat", err)
	}
	return failure.Remote("llm.chat", fmt.Errorf("llm: %w", err))
}
