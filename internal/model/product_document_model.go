package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// ProductDocument is one review row of a collection table. The vector column
// is untyped so a collection can hold either provider's dimensionality.
type ProductDocument struct {
	Id                uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content           string            `gorm:"type:text;not null"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
	EmbeddingProvider string            `gorm:"type:varchar(32);not null"`
	EmbeddingValue    pgvector.Vector   `gorm:"type:vector"`
	CreatedAt         time.Time         `gorm:"autoCreateTime"`
}

func (ProductDocument) TableName() string {
	return "product_documents"
}
