package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/failure"
)

const (
	defaultBaseURL   = "https://router.huggingface.co/hf-inference/models"
	defaultModel     = "BAAI/bge-base-en-v1.5"
	defaultBatchSize = 32
)

// HuggingFaceProvider calls the hosted inference API feature-extraction pipeline.
type HuggingFaceProvider struct {
	apiKey    string
	baseURL   string
	model     string
	batchSize int
	client    *http.Client
}

type embeddingRequest struct {
	Inputs  []string         `json:"inputs"`
	Options embeddingOptions `json:"options"`
}

type embeddingOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHuggingFaceProvider(apiKey, model, baseURL string, client *http.Client) (*HuggingFaceProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, failure.Provider("huggingface.new", errors.New("HF_TOKEN not set"))
	}
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HuggingFaceProvider{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		batchSize: defaultBatchSize,
		client:    client,
	}, nil
}

func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vectors, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embedding.NewEmbeddingResponse(vectors[0]), nil
}

// GenerateBatch splits texts into requests of at most batchSize inputs.
func (p *HuggingFaceProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := p.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (p *HuggingFaceProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Inputs:  texts,
		Options: embeddingOptions{WaitForModel: true, UseCache: true},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/pipeline/feature-extraction", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, failure.Transient("huggingface.embed", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Transient("huggingface.embed", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(bodyBytes)
		var apiErr errorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, failure.FromHTTPStatus("huggingface.embed", resp.StatusCode,
			fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, msg))
	}

	var vectors [][]float32
	if err := json.Unmarshal(bodyBytes, &vectors); err != nil {
		return nil, failure.Remote("huggingface.embed", fmt.Errorf("failed to decode response: %w", err))
	}

	if len(vectors) != len(texts) {
		return nil, failure.Remote("huggingface.embed",
			fmt.Errorf("expected %d embeddings from huggingface api, got %d", len(texts), len(vectors)))
	}

	return vectors, nil
}
