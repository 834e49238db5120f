package mapper

import (
	"ecomm-product-bot/internal/entity"
	"ecomm-product-bot/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ProductDocumentMapper struct{}

func NewProductDocumentMapper() *ProductDocumentMapper {
	return &ProductDocumentMapper{}
}

func (m *ProductDocumentMapper) ToEntity(d *model.ProductDocument) *entity.ProductDocument {
	if d == nil {
		return nil
	}

	var metadata map[string]interface{}
	if d.Metadata != nil {
		metadata = map[string]interface{}(d.Metadata)
	}

	return &entity.ProductDocument{
		Id:                d.Id,
		Content:           d.Content,
		Metadata:          metadata,
		EmbeddingProvider: d.EmbeddingProvider,
		EmbeddingValue:    d.EmbeddingValue.Slice(),
		CreatedAt:         d.CreatedAt,
	}
}

func (m *ProductDocumentMapper) ToModel(e *entity.ProductDocument) *model.ProductDocument {
	if e == nil {
		return nil
	}

	return &model.ProductDocument{
		Id:                e.Id,
		Content:           e.Content,
		Metadata:          datatypes.JSONMap(e.Metadata),
		EmbeddingProvider: e.EmbeddingProvider,
		EmbeddingValue:    pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:         e.CreatedAt,
	}
}

func (m *ProductDocumentMapper) ToModels(docs []*entity.ProductDocument) []*model.ProductDocument {
	models := make([]*model.ProductDocument, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}
