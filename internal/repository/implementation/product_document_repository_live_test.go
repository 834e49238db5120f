package implementation

import (
	"context"
	"os"
	"strings"
	"testing"

	"ecomm-product-bot/internal/entity"
	"ecomm-product-bot/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live pgvector server when TEST_DATABASE_URL is set.
func TestProductDocumentRepositoryLive(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, "silent")
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error)
	require.NoError(t, db.Exec(`CREATE SCHEMA "`+schema+`"`).Error)
	defer db.Exec(`DROP SCHEMA "` + schema + `" CASCADE`)

	ctx := context.Background()
	repo, err := NewProductDocumentRepository(db, schema, "ecomm")
	require.NoError(t, err)

	require.NoError(t, repo.EnsureCollection(ctx))
	// Idempotent on an existing collection.
	require.NoError(t, repo.EnsureCollection(ctx))

	docs := []*entity.ProductDocument{
		{Content: "deep bass", Metadata: map[string]interface{}{"product_name": "boAt Rockerz 450"}, EmbeddingProvider: "openai", EmbeddingValue: []float32{1, 0, 0}},
		{Content: "clear mids", Metadata: map[string]interface{}{"product_name": "realme Buds 2"}, EmbeddingProvider: "openai", EmbeddingValue: []float32{0, 1, 0}},
		{Content: "long battery", Metadata: map[string]interface{}{"product_name": "boAt Airdopes 141"}, EmbeddingProvider: "openai", EmbeddingValue: []float32{0.9, 0.1, 0}},
		{Content: "other embedder", Metadata: map[string]interface{}{"product_name": "x"}, EmbeddingProvider: "huggingface", EmbeddingValue: []float32{1, 0, 0}},
	}
	require.NoError(t, repo.CreateBulk(ctx, docs))
	for _, d := range docs {
		assert.NotEqual(t, uuid.Nil, d.Id)
	}

	n, err := repo.Count(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	hits, err := repo.SearchSimilar(ctx, "openai", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "deep bass", hits[0].Document.Content)
	assert.Equal(t, "boAt Rockerz 450", hits[0].Document.Metadata["product_name"])
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "long battery", hits[1].Document.Content)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)

	for _, h := range hits {
		assert.Equal(t, "openai", h.Document.EmbeddingProvider)
	}
}
