package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/failure"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultModel     = "text-embedding-ada-002"
	defaultBatchSize = 256
)

// OpenAIProvider embeds through the OpenAI embeddings endpoint using the
// langchaingo client.
type OpenAIProvider struct {
	embedder embeddings.Embedder
}

func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, failure.Provider("openai.new", errors.New("OPENAI_API_KEY not set"))
	}
	if model == "" {
		model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, failure.Provider("openai.new", err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(defaultBatchSize),
	)
	if err != nil {
		return nil, failure.Provider("openai.new", err)
	}

	return &OpenAIProvider{embedder: embedder}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if taskType == embedding.TaskRetrievalQuery {
		vector, err := p.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, classify("openai.embed_query", err)
		}
		return embedding.NewEmbeddingResponse(vector), nil
	}

	vectors, err := p.GenerateBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return embedding.NewEmbeddingResponse(vectors[0]), nil
}

func (p *OpenAIProvider) GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, classify("openai.embed_documents", err)
	}
	if len(vectors) != len(texts) {
		return nil, failure.Remote("openai.embed_documents",
			fmt.Errorf("expected %d embeddings from openai, got %d", len(texts), len(vectors)))
	}
	return vectors, nil
}

var statusPattern = regexp.MustCompile(`status code: (\d{3})`)

// classify maps langchaingo client errors, which only carry the HTTP status
// in their message, onto failure kinds.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return failure.Transient(op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return failure.Transient(op, err)
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		return failure.FromHTTPStatus(op, status, err)
	}
	return failure.Remote(op, err)
}
