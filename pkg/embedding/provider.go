package embedding

import "context"

const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	// Name identifies the provider; documents are tagged with it so queries
	// are only compared against vectors from the same model.
	Name() string
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
	GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

func NewEmbeddingResponse(values []float32) *EmbeddingResponse {
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}
}
