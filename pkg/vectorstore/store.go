package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ecomm-product-bot/internal/entity"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/store"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultTopK      = 3
	defaultBatchSize = 100
	defaultPoolSize  = 4
)

var ErrNoDocuments = errors.New("no documents to insert")

// Store is a handle to one collection in the external vector database.
// Documents it writes are tagged with the embedder's name and searches only
// ever see documents tagged with that same name.
type Store struct {
	repo      contract.ProductDocumentRepository
	embedder  embedding.EmbeddingProvider
	pool      *ants.Pool
	batchSize int
	retry     failure.RetryPolicy
	log       logger.ILogger
}

// Option configures a Store.
type Option func(*Store) error

// WithPoolSize bounds how many batches are embedded and written concurrently.
func WithPoolSize(size int) Option {
	return func(s *Store) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

func WithBatchSize(n int) Option {
	return func(s *Store) error {
		if n > 0 {
			s.batchSize = n
		}
		return nil
	}
}

func WithRetryPolicy(p failure.RetryPolicy) Option {
	return func(s *Store) error {
		s.retry = p
		return nil
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(s *Store) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// Open binds the collection, creating it when missing.
func Open(ctx context.Context, repo contract.ProductDocumentRepository, embedder embedding.EmbeddingProvider, opts ...Option) (*Store, error) {
	if repo == nil || embedder == nil {
		return nil, failure.Application("vectorstore.open", errors.New("repository and embedder are required"))
	}

	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		repo:      repo,
		embedder:  embedder,
		pool:      pool,
		batchSize: defaultBatchSize,
		retry:     failure.DefaultRetryPolicy(),
		log:       logger.NewNopLogger(),
	}
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	if err := repo.EnsureCollection(ctx); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// Release stops the worker pool.
func (s *Store) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *Store) EmbedderName() string {
	return s.embedder.Name()
}

// Count reports how many stored documents were embedded by this store's
// provider, i.e. how many are searchable.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.embedder.Name())
}

// AddDocuments embeds and inserts docs, returning the new ids in input order.
// Each call inserts again; nothing is deduplicated.
func (s *Store) AddDocuments(ctx context.Context, docs []store.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, failure.Application("vectorstore.add_documents", ErrNoDocuments)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ids := make([]string, len(docs))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			batchIDs, err := s.insertBatch(ctx, batch)
			if err != nil {
				fail(err)
				return
			}
			copy(ids[start:], batchIDs)
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit batch: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	s.log.Info("vectorstore", "documents inserted", map[string]interface{}{
		"count":    len(ids),
		"embedder": s.embedder.Name(),
	})
	return ids, nil
}

func (s *Store) insertBatch(ctx context.Context, batch []store.Document) ([]string, error) {
	texts := make([]string, len(batch))
	for i, d := range batch {
		texts[i] = d.Content
	}

	vectors, err := failure.Retry(ctx, s.retry, func() ([][]float32, error) {
		return s.embedder.GenerateBatch(ctx, texts, embedding.TaskRetrievalDocument)
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(batch) {
		return nil, failure.Remote("vectorstore.embed", fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch)))
	}

	rows := make([]*entity.ProductDocument, len(batch))
	for i, d := range batch {
		rows[i] = &entity.ProductDocument{
			Content:           d.Content,
			Metadata:          d.Metadata,
			EmbeddingProvider: s.embedder.Name(),
			EmbeddingValue:    vectors[i],
		}
	}

	if _, err := failure.Retry(ctx, s.retry, func() (struct{}, error) {
		return struct{}{}, s.repo.CreateBulk(ctx, rows)
	}); err != nil {
		return nil, err
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Id.String()
	}
	return ids, nil
}

// SimilaritySearch returns the k documents nearest to query.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]store.Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	resp, err := failure.Retry(ctx, s.retry, func() (*embedding.EmbeddingResponse, error) {
		return s.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	})
	if err != nil {
		return nil, err
	}

	var hits []*contract.ScoredProductDocument
	hits, err = failure.Retry(ctx, s.retry, func() ([]*contract.ScoredProductDocument, error) {
		return s.repo.SearchSimilar(ctx, s.embedder.Name(), resp.Embedding.Values, k)
	})
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, len(hits))
	for i, h := range hits {
		docs[i] = store.Document{
			ID:       h.Document.Id.String(),
			Content:  h.Document.Content,
			Score:    float32(h.Similarity),
			Metadata: h.Document.Metadata,
		}
	}
	return docs, nil
}

// Retriever is a fixed-k view over a Store.
type Retriever struct {
	store *Store
	k     int
}

func (s *Store) AsRetriever(k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{store: s, k: k}
}

func (r *Retriever) GetRelevantDocuments(ctx context.Context, query string) ([]store.Document, error) {
	return r.store.SimilaritySearch(ctx, query, r.k)
}
