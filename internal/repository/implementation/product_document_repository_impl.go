package implementation

import (
	"context"
	"fmt"

	"ecomm-product-bot/internal/entity"
	"ecomm-product-bot/internal/mapper"
	"ecomm-product-bot/internal/model"
	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/pkg/database"
	"ecomm-product-bot/pkg/failure"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ProductDocumentRepositoryImpl struct {
	db     *gorm.DB
	table  string // schema.collection
	index  string
	mapper *mapper.ProductDocumentMapper
}

// NewProductDocumentRepository binds the repository to one collection table
// inside the namespace schema.
func NewProductDocumentRepository(db *gorm.DB, namespace, collection string) (contract.ProductDocumentRepository, error) {
	if _, err := database.QuoteIdentifier(namespace); err != nil {
		return nil, err
	}
	if _, err := database.QuoteIdentifier(collection); err != nil {
		return nil, err
	}
	return &ProductDocumentRepositoryImpl{
		db:     db,
		table:  namespace + "." + collection,
		index:  fmt.Sprintf(`"%s_provider_idx"`, collection),
		mapper: mapper.NewProductDocumentMapper(),
	}, nil
}

func (r *ProductDocumentRepositoryImpl) EnsureCollection(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Table(r.table).AutoMigrate(&model.ProductDocument{}); err != nil {
		return failure.Remote("repository.ensure_collection", err)
	}
	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (embedding_provider)", r.index, quoteTable(r.table))
	if err := db.Exec(stmt).Error; err != nil {
		return failure.Remote("repository.ensure_collection", err)
	}
	return nil
}

func (r *ProductDocumentRepositoryImpl) CreateBulk(ctx context.Context, docs []*entity.ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}
	models := r.mapper.ToModels(docs)

	if err := r.db.WithContext(ctx).Table(r.table).Create(models).Error; err != nil {
		return failure.Transient("repository.create_bulk", err)
	}

	// Update IDs back to entities
	for i, m := range models {
		*docs[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProductDocumentRepositoryImpl) Count(ctx context.Context, provider string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Table(r.table)
	if provider != "" {
		query = query.Where("embedding_provider = ?", provider)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, failure.Transient("repository.count", err)
	}
	return count, nil
}

func (r *ProductDocumentRepositoryImpl) SearchSimilar(ctx context.Context, provider string, embedding []float32, limit int) ([]*contract.ScoredProductDocument, error) {
	if limit <= 0 {
		limit = 3
	}

	// Cosine distance in pgvector is 1 - cosine_similarity
	type result struct {
		model.ProductDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table(r.table).
		Select("*, 1 - (embedding_value <=> ?) AS similarity", queryVector).
		Where("embedding_provider = ?", provider).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, failure.Transient("repository.search_similar", err)
	}

	scored := make([]*contract.ScoredProductDocument, len(results))
	for i := range results {
		scored[i] = &contract.ScoredProductDocument{
			Document:   r.mapper.ToEntity(&results[i].ProductDocument),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}

func quoteTable(table string) string {
	for i := 0; i < len(table); i++ {
		if table[i] == '.' {
			return `"` + table[:i] + `"."` + table[i+1:] + `"`
		}
	}
	return `"` + table + `"`
}
