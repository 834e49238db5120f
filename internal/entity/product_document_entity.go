package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProductDocument struct {
	Id                uuid.UUID
	Content           string
	Metadata          map[string]interface{}
	EmbeddingProvider string
	EmbeddingValue    []float32
	CreatedAt         time.Time
}
