package contract

import (
	"context"

	"ecomm-product-bot/internal/entity"
)

// ScoredProductDocument wraps ProductDocument with its cosine similarity.
type ScoredProductDocument struct {
	Document   *entity.ProductDocument
	Similarity float64 // 1.0 = identical
}

type ProductDocumentRepository interface {
	// EnsureCollection creates the collection table when it does not exist yet.
	EnsureCollection(ctx context.Context) error
	// CreateBulk inserts the documents and fills in their generated ids.
	CreateBulk(ctx context.Context, docs []*entity.ProductDocument) error
	Count(ctx context.Context, provider string) (int64, error)
	// SearchSimilar restricts to rows embedded by provider; vectors from
	// different models are not comparable.
	SearchSimilar(ctx context.Context, provider string, embedding []float32, limit int) ([]*ScoredProductDocument, error)
}
