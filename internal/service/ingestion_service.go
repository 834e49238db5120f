package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"ecomm-product-bot/internal/config"
	"ecomm-product-bot/internal/pkg/logger"
	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/internal/repository/implementation"
	"ecomm-product-bot/pkg/database"
	"ecomm-product-bot/pkg/dataset"
	"ecomm-product-bot/pkg/embedding"
	"ecomm-product-bot/pkg/embedding/huggingface"
	embeddingopenai "ecomm-product-bot/pkg/embedding/openai"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/vectorstore"
)

// IngestionResult describes one completed ingestion run.
type IngestionResult struct {
	Store       *vectorstore.Store
	InsertedIDs []string
	Skipped     int
	Embedder    string
}

type IIngestionService interface {
	// OpenStore selects an embedder and binds the collection without inserting.
	OpenStore(ctx context.Context) (*vectorstore.Store, error)
	// Ingest converts the CSV at csvPath (the configured path when empty) and
	// inserts every document. Each call inserts again.
	Ingest(ctx context.Context, csvPath string) (*IngestionResult, error)
}

// RepositoryOpener connects to the vector database and returns the collection repository.
type RepositoryOpener func(ctx context.Context) (contract.ProductDocumentRepository, error)

type IngestionOption func(*ingestionService)

// WithCandidates replaces the embedding providers that are tried.
func WithCandidates(candidates []embedding.Candidate) IngestionOption {
	return func(s *ingestionService) {
		s.candidates = candidates
	}
}

func WithRepositoryOpener(open RepositoryOpener) IngestionOption {
	return func(s *ingestionService) {
		s.openRepo = open
	}
}

// WithQueryCache caches query embeddings of the selected provider.
func WithQueryCache(cache embedding.QueryCache) IngestionOption {
	return func(s *ingestionService) {
		s.queryCache = cache
	}
}

type ingestionService struct {
	cfg        *config.Config
	log        logger.ILogger
	candidates []embedding.Candidate
	openRepo   RepositoryOpener
	queryCache embedding.QueryCache
	retry      failure.RetryPolicy

	mu    sync.Mutex
	store *vectorstore.Store
}

func NewIngestionService(cfg *config.Config, log logger.ILogger, opts ...IngestionOption) IIngestionService {
	s := &ingestionService{
		cfg: cfg,
		log: log,
		retry: failure.RetryPolicy{
			MaxRetries:      cfg.LLM.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
	s.candidates = DefaultEmbeddingCandidates(cfg)
	s.openRepo = s.openPostgresRepository
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultEmbeddingCandidates lists the hosted-inference and general-purpose embedders.
func DefaultEmbeddingCandidates(cfg *config.Config) []embedding.Candidate {
	return []embedding.Candidate{
		{
			Name: "huggingface",
			Build: func() (embedding.EmbeddingProvider, error) {
				return huggingface.NewHuggingFaceProvider(cfg.Keys.HuggingFace, cfg.Embedding.HFModel, cfg.Embedding.HFInferenceURL, &http.Client{Timeout: 60 * time.Second})
			},
		},
		{
			Name: "openai",
			Build: func() (embedding.EmbeddingProvider, error) {
				return embeddingopenai.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Embedding.OpenAIModel, cfg.Embedding.OpenAIBaseURL)
			},
		},
	}
}

func (s *ingestionService) openPostgresRepository(ctx context.Context) (contract.ProductDocumentRepository, error) {
	db, err := database.NewVectorDB(ctx, database.VectorDBConfig{
		Endpoint:  s.cfg.VectorDB.Endpoint,
		Token:     s.cfg.VectorDB.Token,
		Namespace: s.cfg.VectorDB.Namespace,
		LogLevel:  s.cfg.VectorDB.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	return implementation.NewProductDocumentRepository(db, s.cfg.VectorDB.Namespace, s.cfg.VectorDB.Collection)
}

func (s *ingestionService) OpenStore(ctx context.Context) (*vectorstore.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return s.store, nil
	}

	if err := s.cfg.Validate(); err != nil {
		s.log.Error("ingestion", "configuration invalid", map[string]interface{}{"error": err.Error()})
		return nil, failure.Configuration("ingestion.validate", err)
	}

	provider, err := embedding.Select(ctx, s.candidates, embedding.SelectOptions{
		Preference: s.cfg.Embedding.Preference,
		Strict:     s.cfg.Embedding.Strict,
		Probe:      s.cfg.Embedding.Probe,
	}, s.log)
	if err != nil {
		s.log.Error("ingestion", "no embedding provider available", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if s.queryCache != nil {
		provider = embedding.NewCachedProvider(provider, s.queryCache)
	}

	repo, err := s.openRepo(ctx)
	if err != nil {
		s.log.Error("ingestion", "vector database unavailable", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	st, err := vectorstore.Open(ctx, repo, provider,
		vectorstore.WithPoolSize(s.cfg.Ingest.Workers),
		vectorstore.WithBatchSize(s.cfg.Ingest.BatchSize),
		vectorstore.WithRetryPolicy(s.retry),
		vectorstore.WithLogger(s.log),
	)
	if err != nil {
		s.log.Error("ingestion", "failed to open collection", map[string]interface{}{
			"collection": s.cfg.VectorDB.Collection,
			"error":      err.Error(),
		})
		return nil, err
	}

	details := map[string]interface{}{
		"collection": s.cfg.VectorDB.Collection,
		"namespace":  s.cfg.VectorDB.Namespace,
		"embedder":   provider.Name(),
	}
	if n, err := st.Count(ctx); err != nil {
		details["count_error"] = err.Error()
	} else {
		details["documents"] = n
		if n == 0 {
			s.log.Warn("ingestion", "collection has no documents for this embedder, answers will lack context until ingestion runs", details)
		}
	}
	s.log.Info("ingestion", "vector store ready", details)
	s.store = st
	return st, nil
}

func (s *ingestionService) Ingest(ctx context.Context, csvPath string) (*IngestionResult, error) {
	if err := s.cfg.Validate(); err != nil {
		s.log.Error("ingestion", "configuration invalid", map[string]interface{}{"error": err.Error()})
		return nil, failure.Configuration("ingestion.validate", err)
	}

	if csvPath == "" {
		csvPath = s.cfg.Ingest.CSVPath
	}
	converted, err := dataset.ConvertFile(csvPath)
	if err != nil {
		s.log.Error("ingestion", "failed to convert dataset", map[string]interface{}{
			"path":  csvPath,
			"error": err.Error(),
		})
		return nil, err
	}
	if converted.Skipped > 0 {
		s.log.Warn("ingestion", "rows without title or review skipped", map[string]interface{}{
			"skipped": converted.Skipped,
		})
	}
	if len(converted.Documents) == 0 {
		s.log.Warn("ingestion", "no documents were inserted into the vector store", map[string]interface{}{"path": csvPath})
		return nil, failure.Application("ingestion.ingest", vectorstore.ErrNoDocuments)
	}

	st, err := s.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ids, err := st.AddDocuments(ctx, converted.Documents)
	if err != nil {
		s.log.Error("ingestion", "failed to insert documents", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	if len(ids) == 0 {
		return nil, failure.Application("ingestion.ingest", vectorstore.ErrNoDocuments)
	}

	s.log.Info("ingestion", "ingestion completed", map[string]interface{}{
		"inserted":    len(ids),
		"skipped":     converted.Skipped,
		"embedder":    st.EmbedderName(),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return &IngestionResult{
		Store:       st,
		InsertedIDs: ids,
		Skipped:     converted.Skipped,
		Embedder:    st.EmbedderName(),
	}, nil
}

// IsFatalIngestionError reports failures that retrying the same request cannot fix.
func IsFatalIngestionError(err error) bool {
	if errors.Is(err, embedding.ErrNoEmbeddingProvider) || errors.Is(err, config.ErrMissingConfig) {
		return true
	}
	k := failure.KindOf(err)
	return k == failure.KindConfiguration || k == failure.KindProvider
}
