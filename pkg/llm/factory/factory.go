package factory

import (
	"fmt"

	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/llm"
	"ecomm-product-bot/pkg/llm/huggingface"
	"ecomm-product-bot/pkg/llm/openai"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

func NewLLMProvider(cfg config.LLMConfig, keys config.APIKeys) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "", "groq":
		return openai.New(openai.Config{
			APIKey:      keys.Groq,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		return openai.New(openai.Config{
			APIKey:      keys.OpenAI,
			BaseURL:     baseURL,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(keys.HuggingFace, cfg.BaseURL, cfg.Model, cfg.Timeout)
	default:
		return nil, failure.Configuration("llm.factory", fmt.Errorf("unsupported LLM provider: %s", cfg.Provider))
	}
}
